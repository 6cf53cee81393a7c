package pubsub

import (
	"sync"
	"testing"
	"time"
)

// topicOther is a second, test-only topic used to exercise cross-topic
// isolation; the package itself only ever publishes TopicPlaybackStatus.
const topicOther Topic = "OTHER_TEST_TOPIC"

func TestNew(t *testing.T) {
	ps := New()
	if ps == nil {
		t.Fatal("New() returned nil")
	}
	if ps.subscribers == nil {
		t.Error("subscribers map should be initialized")
	}
}

func TestSubscribe(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "", 10)
	if sub == nil {
		t.Fatal("Subscribe() returned nil")
	}
	if sub.Topic != TopicPlaybackStatus {
		t.Errorf("Expected topic %s, got %s", TopicPlaybackStatus, sub.Topic)
	}
	if sub.Filter != "" {
		t.Errorf("Expected empty filter, got '%s'", sub.Filter)
	}
	if cap(sub.Channel) != 10 {
		t.Errorf("Expected channel buffer size 10, got %d", cap(sub.Channel))
	}

	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 1 {
		t.Errorf("Expected 1 subscriber, got %d", count)
	}
}

func TestSubscribe_WithFilter(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "universe-1", 5)
	if sub.Filter != "universe-1" {
		t.Errorf("Expected filter 'universe-1', got '%s'", sub.Filter)
	}
}

func TestSubscribe_MultipleSubscribers(t *testing.T) {
	ps := New()

	ps.Subscribe(TopicPlaybackStatus, "", 10)
	ps.Subscribe(TopicPlaybackStatus, "", 10)
	ps.Subscribe(topicOther, "", 10)

	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 2 {
		t.Errorf("Expected 2 playback-status subscribers, got %d", count)
	}
	if count := ps.SubscriberCount(topicOther); count != 1 {
		t.Errorf("Expected 1 other-topic subscriber, got %d", count)
	}
}

func TestUnsubscribe(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "", 10)
	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 1 {
		t.Errorf("Expected 1 subscriber before unsubscribe, got %d", count)
	}

	ps.Unsubscribe(sub)

	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 0 {
		t.Errorf("Expected 0 subscribers after unsubscribe, got %d", count)
	}

	select {
	case _, ok := <-sub.Channel:
		if ok {
			t.Error("Channel should be closed after unsubscribe")
		}
	default:
		t.Error("Channel should be closed and readable")
	}
}

func TestUnsubscribe_NonExistent(t *testing.T) {
	ps := New()

	fakeSub := &Subscriber{
		ID:      "fake-id",
		Topic:   TopicPlaybackStatus,
		Channel: make(chan interface{}, 1),
	}

	// Should not panic.
	ps.Unsubscribe(fakeSub)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "", 10)
	ps.Unsubscribe(sub)

	// A second Unsubscribe for the same (already-removed) subscriber must
	// not panic by closing an already-closed channel.
	ps.Unsubscribe(sub)
}

func TestPublish(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "", 10)

	ps.Publish(TopicPlaybackStatus, "", "test message")

	select {
	case msg := <-sub.Channel:
		if msg != "test message" {
			t.Errorf("Expected 'test message', got '%v'", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timed out waiting for message")
	}
}

func TestPublish_WithFilter(t *testing.T) {
	ps := New()

	subWithFilter := ps.Subscribe(TopicPlaybackStatus, "universe-1", 10)
	subOtherFilter := ps.Subscribe(TopicPlaybackStatus, "universe-2", 10)
	subNoFilter := ps.Subscribe(TopicPlaybackStatus, "", 10)

	ps.Publish(TopicPlaybackStatus, "universe-1", "msg for universe-1")

	select {
	case msg := <-subWithFilter.Channel:
		if msg != "msg for universe-1" {
			t.Errorf("Expected 'msg for universe-1', got '%v'", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("subWithFilter should have received the message")
	}

	select {
	case <-subOtherFilter.Channel:
		t.Error("subOtherFilter should not have received the message")
	case <-time.After(50 * time.Millisecond):
		// expected: no message
	}

	select {
	case msg := <-subNoFilter.Channel:
		if msg != "msg for universe-1" {
			t.Errorf("Expected 'msg for universe-1', got '%v'", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("subNoFilter should have received the message")
	}
}

func TestPublish_EmptyFilter(t *testing.T) {
	ps := New()

	subWithFilter := ps.Subscribe(TopicPlaybackStatus, "universe-1", 10)

	ps.Publish(TopicPlaybackStatus, "", "broadcast message")

	select {
	case msg := <-subWithFilter.Channel:
		if msg != "broadcast message" {
			t.Errorf("Expected 'broadcast message', got '%v'", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Should have received message with empty publish filter")
	}
}

func TestPublish_ChannelFull(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "", 1)

	ps.Publish(TopicPlaybackStatus, "", "msg1")

	done := make(chan bool, 1)
	go func() {
		ps.Publish(TopicPlaybackStatus, "", "msg2") // dropped, channel full
		done <- true
	}()

	select {
	case <-done:
		// didn't block
	case <-time.After(100 * time.Millisecond):
		t.Error("Publish blocked on full channel")
	}

	msg := <-sub.Channel
	if msg != "msg1" {
		t.Errorf("Expected 'msg1', got '%v'", msg)
	}
}

func TestPublishAll(t *testing.T) {
	ps := New()

	sub1 := ps.Subscribe(TopicPlaybackStatus, "filter1", 10)
	sub2 := ps.Subscribe(TopicPlaybackStatus, "filter2", 10)
	sub3 := ps.Subscribe(TopicPlaybackStatus, "", 10)

	ps.PublishAll(TopicPlaybackStatus, "broadcast")

	for i, sub := range []*Subscriber{sub1, sub2, sub3} {
		select {
		case msg := <-sub.Channel:
			if msg != "broadcast" {
				t.Errorf("Subscriber %d: Expected 'broadcast', got '%v'", i, msg)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("Subscriber %d timed out waiting for message", i)
		}
	}
}

func TestPublishAll_ChannelFull(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicPlaybackStatus, "", 1)

	ps.PublishAll(TopicPlaybackStatus, "msg1")

	done := make(chan bool, 1)
	go func() {
		ps.PublishAll(TopicPlaybackStatus, "msg2")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("PublishAll blocked on full channel")
	}

	<-sub.Channel
}

func TestSubscriberCount(t *testing.T) {
	ps := New()

	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 0 {
		t.Errorf("Expected 0 subscribers initially, got %d", count)
	}

	sub1 := ps.Subscribe(TopicPlaybackStatus, "", 10)
	sub2 := ps.Subscribe(TopicPlaybackStatus, "", 10)

	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 2 {
		t.Errorf("Expected 2 subscribers, got %d", count)
	}

	ps.Unsubscribe(sub1)
	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 1 {
		t.Errorf("Expected 1 subscriber after unsubscribe, got %d", count)
	}

	ps.Unsubscribe(sub2)
	if count := ps.SubscriberCount(TopicPlaybackStatus); count != 0 {
		t.Errorf("Expected 0 subscribers after all unsubscribed, got %d", count)
	}
}

func TestConcurrentOperations(t *testing.T) {
	ps := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := ps.Subscribe(TopicPlaybackStatus, "", 10)
			select {
			case <-sub.Channel:
			case <-time.After(200 * time.Millisecond):
			}
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ps.Publish(TopicPlaybackStatus, "", i)
		}(i)
	}

	wg.Wait()
}

func TestSubscribeAssignsDistinctIDs(t *testing.T) {
	ps := New()

	sub1 := ps.Subscribe(TopicPlaybackStatus, "", 1)
	sub2 := ps.Subscribe(TopicPlaybackStatus, "", 1)

	if sub1.ID == sub2.ID {
		t.Errorf("expected distinct subscriber ids, got %q for both", sub1.ID)
	}
}
