package notify

import (
	"github.com/lomedigitalschool/kotiz-web/internal/store"
)

// Subscriber adapts store domain events into dispatcher notifications,
// keeping delivery concerns out of the mutation path. Wire it with
// store.Subscribe(notify.Subscriber(dispatcher)).
func Subscriber(d *Dispatcher) func(store.Event) {
	return func(e store.Event) {
		switch ev := e.(type) {
		case store.ContributionAdded:
			title := ev.Contribution.CagnotteTitle

			// Tell the creator about the new contribution.
			if ev.Cagnotte != nil {
				d.Dispatch(Notification{
					TargetUserId: ev.Cagnotte.CreatorId,
					Kind:         KindNewContribution,
					Payload: Payload{
						Amount:        ev.Contribution.Amount,
						CagnotteTitle: title,
						User:          ev.Contribution.DisplayName(),
					},
				})
			}

			// Tell the contributor how the payment went. The payment
			// provider is mocked as always-success for now.
			contributorId := "guest"
			if ev.Contribution.UserId != nil {
				contributorId = *ev.Contribution.UserId
			}
			d.Dispatch(Notification{
				TargetUserId: contributorId,
				Kind:         KindPaymentResult,
				Payload: Payload{
					Amount:        ev.Contribution.Amount,
					CagnotteTitle: title,
					Status:        PaymentStatusSuccess,
					ReceiptLink:   "/receipts/" + ev.Contribution.Id,
					RetryLink:     "/contribute/" + ev.Contribution.CagnotteId,
				},
			})

		case store.CagnotteClosed:
			d.Dispatch(Notification{
				TargetUserId: ev.Cagnotte.CreatorId,
				Kind:         KindCagnotteClosed,
				Payload: Payload{
					CagnotteTitle: ev.Cagnotte.Title,
				},
			})
		}
	}
}
