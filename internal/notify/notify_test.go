package notify

import (
	"testing"

	"github.com/lomedigitalschool/kotiz-web/internal/models"
	"github.com/lomedigitalschool/kotiz-web/internal/store"

	"github.com/shopspring/decimal"
)

type delivery struct {
	targetUserId string
	message      string
	payload      Payload
}

type recordingSink struct {
	deliveries []delivery
}

func (r *recordingSink) Deliver(targetUserId, message string, p Payload) {
	r.deliveries = append(r.deliveries, delivery{targetUserId, message, p})
}

func setupRecordingDispatcher(channels []string) (*Dispatcher, *recordingSink) {
	d := NewDispatcher(channels)
	sink := &recordingSink{}
	d.RegisterSink(ChannelConsole, sink)
	return d, sink
}

func TestDispatchNewContributionMessage(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)

	d.Dispatch(Notification{
		TargetUserId: "u1",
		Kind:         KindNewContribution,
		Payload: Payload{
			Amount:        decimal.NewFromInt(200),
			CagnotteTitle: "Trip",
			User:          "Zoe",
		},
	})

	if len(sink.deliveries) != 1 {
		t.Fatalf("Expected 1 delivery, got %d", len(sink.deliveries))
	}
	got := sink.deliveries[0]
	want := `Nouvelle contribution de 200 sur "Trip" par Zoe !`
	if got.message != want {
		t.Errorf("Expected %q, got %q", want, got.message)
	}
	if got.targetUserId != "u1" {
		t.Errorf("Expected target u1, got %q", got.targetUserId)
	}
}

func TestDispatchNewContributionAnonymousFallback(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)

	d.Dispatch(Notification{
		Kind: KindNewContribution,
		Payload: Payload{
			Amount:        decimal.NewFromInt(50),
			CagnotteTitle: "Trip",
		},
	})

	want := `Nouvelle contribution de 50 sur "Trip" par Anonyme !`
	if sink.deliveries[0].message != want {
		t.Errorf("Expected %q, got %q", want, sink.deliveries[0].message)
	}
}

func TestDispatchCagnotteClosedMessage(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)

	d.Dispatch(Notification{
		Kind:    KindCagnotteClosed,
		Payload: Payload{CagnotteTitle: "Trip"},
	})

	want := `La cagnotte "Trip" a été clôturée !`
	if sink.deliveries[0].message != want {
		t.Errorf("Expected %q, got %q", want, sink.deliveries[0].message)
	}
}

func TestDispatchPaymentResultMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{
			name: "success with receipt link",
			payload: Payload{
				Amount:        decimal.NewFromInt(200),
				CagnotteTitle: "Trip",
				Status:        PaymentStatusSuccess,
				ReceiptLink:   "/receipts/abc",
			},
			want: `Votre paiement de 200 pour "Trip" a été effectué avec succès ! Reçu disponible ici : /receipts/abc`,
		},
		{
			name: "failure with retry link",
			payload: Payload{
				Amount:        decimal.NewFromInt(200),
				CagnotteTitle: "Trip",
				Status:        "failed",
				RetryLink:     "/contribute/1",
			},
			want: `Votre paiement de 200 pour "Trip" a échoué. Réessayez ici : /contribute/1`,
		},
		{
			name: "success without link",
			payload: Payload{
				Amount:        decimal.NewFromInt(200),
				CagnotteTitle: "Trip",
				Status:        PaymentStatusSuccess,
			},
			want: `Votre paiement de 200 pour "Trip" a été effectué avec succès !`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, sink := setupRecordingDispatcher(nil)
			d.Dispatch(Notification{Kind: KindPaymentResult, Payload: tt.payload})
			if sink.deliveries[0].message != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, sink.deliveries[0].message)
			}
		})
	}
}

func TestDispatchUnknownKindFallsBackToGenericMessage(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)

	d.Dispatch(Notification{TargetUserId: "u1", Kind: "somethingElse"})

	want := "Notification [somethingElse] pour l'utilisateur u1"
	if sink.deliveries[0].message != want {
		t.Errorf("Expected %q, got %q", want, sink.deliveries[0].message)
	}
}

func TestDispatchDefaultsToConsoleChannel(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)
	email := &recordingSink{}
	d.RegisterSink(ChannelEmail, email)

	d.Dispatch(Notification{Kind: KindCagnotteClosed})

	if len(sink.deliveries) != 1 {
		t.Errorf("Expected console delivery by default, got %d", len(sink.deliveries))
	}
	if len(email.deliveries) != 0 {
		t.Errorf("Expected no email delivery, got %d", len(email.deliveries))
	}
}

func TestDispatchFansOutToNamedChannels(t *testing.T) {
	d, console := setupRecordingDispatcher(nil)
	email := &recordingSink{}
	d.RegisterSink(ChannelEmail, email)

	d.Dispatch(Notification{
		Kind:     KindCagnotteClosed,
		Channels: []string{ChannelConsole, ChannelEmail},
	})

	if len(console.deliveries) != 1 || len(email.deliveries) != 1 {
		t.Errorf("Expected one delivery per channel, got console=%d email=%d",
			len(console.deliveries), len(email.deliveries))
	}
}

func TestDispatchUnknownChannelDoesNotPanic(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)

	d.Dispatch(Notification{
		Kind:     KindCagnotteClosed,
		Channels: []string{"pigeon", ChannelConsole},
	})

	if len(sink.deliveries) != 1 {
		t.Errorf("Expected known channel still served, got %d deliveries", len(sink.deliveries))
	}
}

func TestDispatchRecoversFromPanickingSink(t *testing.T) {
	d := NewDispatcher(nil)
	d.RegisterSink(ChannelConsole, panicSink{})

	// Must not propagate.
	d.Dispatch(Notification{Kind: KindCagnotteClosed})
}

type panicSink struct{}

func (panicSink) Deliver(string, string, Payload) { panic("gateway down") }

func TestSubscriberContributionAdded(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)
	handler := Subscriber(d)

	userId := "u7"
	handler(store.ContributionAdded{
		Contribution: models.Contribution{
			Id:            "c1",
			CagnotteId:    "1",
			UserId:        &userId,
			User:          "Zoe",
			Amount:        decimal.NewFromInt(200),
			CagnotteTitle: "Trip",
		},
		Cagnotte: &models.Cagnotte{Id: "1", Title: "Trip", CreatorId: "creator-1"},
	})

	if len(sink.deliveries) != 2 {
		t.Fatalf("Expected creator + contributor notifications, got %d", len(sink.deliveries))
	}

	creator := sink.deliveries[0]
	if creator.targetUserId != "creator-1" {
		t.Errorf("Expected first notification to creator-1, got %q", creator.targetUserId)
	}
	wantCreator := `Nouvelle contribution de 200 sur "Trip" par Zoe !`
	if creator.message != wantCreator {
		t.Errorf("Expected %q, got %q", wantCreator, creator.message)
	}

	contributor := sink.deliveries[1]
	if contributor.targetUserId != "u7" {
		t.Errorf("Expected payment result to u7, got %q", contributor.targetUserId)
	}
	if contributor.payload.ReceiptLink != "/receipts/c1" {
		t.Errorf("Expected receipt link /receipts/c1, got %q", contributor.payload.ReceiptLink)
	}
}

func TestSubscriberGuestContribution(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)
	handler := Subscriber(d)

	// No parent cagnotte on the event: creator notification is skipped, the
	// contributor one targets the guest placeholder.
	handler(store.ContributionAdded{
		Contribution: models.Contribution{
			Id:            "c1",
			CagnotteId:    "ghost",
			Amount:        decimal.NewFromInt(10),
			CagnotteTitle: models.UnknownCagnotteTitle,
		},
	})

	if len(sink.deliveries) != 1 {
		t.Fatalf("Expected only the payment notification, got %d", len(sink.deliveries))
	}
	if sink.deliveries[0].targetUserId != "guest" {
		t.Errorf("Expected guest target, got %q", sink.deliveries[0].targetUserId)
	}
}

func TestSubscriberCagnotteClosed(t *testing.T) {
	d, sink := setupRecordingDispatcher(nil)
	handler := Subscriber(d)

	handler(store.CagnotteClosed{
		Cagnotte: models.Cagnotte{Id: "1", Title: "Trip", CreatorId: "creator-1"},
	})

	if len(sink.deliveries) != 1 {
		t.Fatalf("Expected 1 delivery, got %d", len(sink.deliveries))
	}
	want := `La cagnotte "Trip" a été clôturée !`
	if sink.deliveries[0].message != want {
		t.Errorf("Expected %q, got %q", want, sink.deliveries[0].message)
	}
	if sink.deliveries[0].targetUserId != "creator-1" {
		t.Errorf("Expected creator target, got %q", sink.deliveries[0].targetUserId)
	}
}
