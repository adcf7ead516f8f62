package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow/pkg/channels/gochannel"
	"github.com/zapflow/zapflow/pkg/events"
)

func testBus(t *testing.T) *WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func baseEvent(bus *WatermillEventBus, eventType events.EventType, campaignID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         bus.GenerateID(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		CampaignID: campaignID,
	}
}

func TestPublishDeliversTypedEvent(t *testing.T) {
	bus := testBus(t)
	ctx := context.Background()

	received := make(chan any, 1)

	require.NoError(t, bus.Handle(events.CampaignPublishedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	scheduledAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, bus.Publish(ctx, "campaign-1", events.CampaignPublished{
		BaseEvent:     baseEvent(bus, events.CampaignPublishedEvent, "campaign-1"),
		ScheduledDate: &scheduledAt,
		NodeCount:     3,
	}))

	select {
	case event := <-received:
		published, ok := event.(*events.CampaignPublished)
		require.True(t, ok)
		assert.Equal(t, "campaign-1", published.CampaignID)
		assert.Equal(t, 3, published.NodeCount)
		require.NotNil(t, published.ScheduledDate)
		assert.True(t, published.ScheduledDate.Equal(scheduledAt))
	case <-time.After(2 * time.Second):
		t.Fatal("published event was not delivered")
	}
}

func TestHandlersOnlySeeTheirEventType(t *testing.T) {
	bus := testBus(t)
	ctx := context.Background()

	paused := make(chan any, 1)

	require.NoError(t, bus.Handle(events.CampaignPausedEvent, func(_ context.Context, event any) error {
		paused <- event

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "campaign-1", events.CampaignStarted{
		BaseEvent: baseEvent(bus, events.CampaignStartedEvent, "campaign-1"),
	}))
	require.NoError(t, bus.Publish(ctx, "campaign-1", events.CampaignPaused{
		BaseEvent: baseEvent(bus, events.CampaignPausedEvent, "campaign-1"),
	}))

	select {
	case event := <-paused:
		_, ok := event.(*events.CampaignPaused)
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("paused event was not delivered")
	}

	assert.Empty(t, paused)
}

func TestPublishWithoutHandlerIsAcked(t *testing.T) {
	bus := testBus(t)
	ctx := context.Background()

	require.NoError(t, bus.Subscribe(ctx))

	// The test channel blocks Publish until the message is acked, so a
	// return here proves unhandled events drain instead of wedging the bus.
	require.NoError(t, bus.Publish(ctx, "campaign-1", events.CampaignDeleted{
		BaseEvent: baseEvent(bus, events.CampaignDeletedEvent, "campaign-1"),
	}))
}

func TestGenerateIDUnique(t *testing.T) {
	bus := testBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
