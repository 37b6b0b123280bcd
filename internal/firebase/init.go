package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// InitFirebase initializes and returns a Firebase app instance
func InitFirebase() (*firebase.App, error) {
	ctx := context.Background()

	// Get Firebase configuration from environment
	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	projectID := os.Getenv("FIREBASE_PROJECT_ID")

	var app *firebase.App
	var err error

	if serviceAccountPath != "" {
		// Initialize with service account file
		opt := option.WithCredentialsFile(serviceAccountPath)
		config := &firebase.Config{
			ProjectID: projectID,
		}
		app, err = firebase.NewApp(ctx, config, opt)
	} else {
		// Initialize with default credentials (useful for Google Cloud deployment)
		config := &firebase.Config{
			ProjectID: projectID,
		}
		app, err = firebase.NewApp(ctx, config)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	return app, nil
}

// GetMessagingClient returns an FCM client from the app
func GetMessagingClient(app *firebase.App) (*messaging.Client, error) {
	ctx := context.Background()
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get FCM client: %w", err)
	}
	return client, nil
}
