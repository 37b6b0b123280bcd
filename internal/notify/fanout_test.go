package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/observability"
	"io.winapps.missingpersonalert/internal/persons"
)

type fakeMessenger struct {
	mu         sync.Mutex
	sent       []*messaging.Message
	failTokens map[string]bool
	failTopic  bool
}

func (f *fakeMessenger) Send(_ context.Context, message *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)

	if message.Topic != "" && f.failTopic {
		return "", errors.New("topic delivery failed")
	}
	if f.failTokens[message.Token] {
		return "", errors.New("token delivery failed")
	}
	return "projects/test/messages/1", nil
}

func (f *fakeMessenger) attempts() (topic int, tokens map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens = map[string]int{}
	for _, m := range f.sent {
		if m.Topic != "" {
			topic++
			continue
		}
		tokens[m.Token]++
	}
	return topic, tokens
}

func fanoutService(messenger Messenger, registry *TokenRegistry) *Service {
	return NewService(messenger, registry, nil, "Germany_Alerts", zap.NewNop().Sugar(), observability.NewMetricsForTesting())
}

func testPerson() *persons.Person {
	return &persons.Person{ID: "p-1", FullName: "Max Mustermann"}
}

func TestNotify_AttemptsTopicPlusEveryToken(t *testing.T) {
	registry := testRegistry()
	const k = 5
	for i := 0; i < k; i++ {
		registry.Register(context.Background(), fmt.Sprintf("token-%d", i))
	}

	messenger := &fakeMessenger{}
	fanoutService(messenger, registry).NotifyMissingPerson(context.Background(), testPerson())

	topic, tokens := messenger.attempts()
	assert.Equal(t, 1, topic)
	assert.Len(t, tokens, k)
	for token, count := range tokens {
		assert.Equal(t, 1, count, "token %s", token)
	}
}

func TestNotify_OneTokenFailureDoesNotAbortRest(t *testing.T) {
	registry := testRegistry()
	registry.Register(context.Background(), "good-1")
	registry.Register(context.Background(), "bad")
	registry.Register(context.Background(), "good-2")

	messenger := &fakeMessenger{failTokens: map[string]bool{"bad": true}}
	fanoutService(messenger, registry).NotifyMissingPerson(context.Background(), testPerson())

	topic, tokens := messenger.attempts()
	assert.Equal(t, 1, topic)
	assert.Len(t, tokens, 3, "remaining deliveries still attempted")
}

func TestNotify_TopicFailureDoesNotAbortTokens(t *testing.T) {
	registry := testRegistry()
	registry.Register(context.Background(), "token-1")

	messenger := &fakeMessenger{failTopic: true}
	fanoutService(messenger, registry).NotifyMissingPerson(context.Background(), testPerson())

	topic, tokens := messenger.attempts()
	assert.Equal(t, 1, topic)
	assert.Len(t, tokens, 1)
}

func TestNotify_NoTokensStillBroadcastsTopic(t *testing.T) {
	messenger := &fakeMessenger{}
	fanoutService(messenger, testRegistry()).NotifyMissingPerson(context.Background(), testPerson())

	topic, tokens := messenger.attempts()
	assert.Equal(t, 1, topic)
	assert.Empty(t, tokens)
}

func TestNotify_MessageCarriesLocalizedCopy(t *testing.T) {
	messenger := &fakeMessenger{}
	fanoutService(messenger, testRegistry()).NotifyMissingPerson(context.Background(), testPerson())

	require.Len(t, messenger.sent, 1)
	msg := messenger.sent[0]
	assert.Equal(t, "Germany_Alerts", msg.Topic)
	assert.Equal(t, alertTitle, msg.Notification.Title)
	assert.Contains(t, msg.Notification.Body, "Max Mustermann")
}
