package notify

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notification kinds understood by the dispatcher. Unknown kinds fall back to
// a generic message rather than failing.
const (
	KindNewContribution = "newContribution"
	KindCagnotteClosed  = "cagnotteClosed"
	KindPaymentResult   = "paymentResult"
)

// Delivery channels. Unknown channels log a warning and are otherwise
// ignored.
const (
	ChannelConsole = "console"
	ChannelEmail   = "email"
	ChannelPush    = "push"
	ChannelSMS     = "sms"
)

// PaymentStatusSuccess marks a successful paymentResult payload.
const PaymentStatusSuccess = "success"

// Payload carries the fields the message templates draw from. Unused fields
// stay zero.
type Payload struct {
	Amount        decimal.Decimal
	CagnotteTitle string
	User          string
	Status        string
	ReceiptLink   string
	RetryLink     string
	UserEmail     string
	UserPhone     string
}

// Notification is one advisory message to a user. Delivery is best-effort
// with no receipts; a failed channel never affects the triggering mutation.
type Notification struct {
	TargetUserId string
	Kind         string
	Payload      Payload
	Channels     []string
}

// Sink is one delivery channel.
type Sink interface {
	Deliver(targetUserId, message string, p Payload)
}

// Dispatcher resolves a notification kind to a message and fans it out to the
// requested channels.
type Dispatcher struct {
	sinks           map[string]Sink
	defaultChannels []string
}

// NewDispatcher builds a dispatcher with the four mock delivery channels.
// defaultChannels applies when a notification names none; empty means console
// only.
func NewDispatcher(defaultChannels []string) *Dispatcher {
	if len(defaultChannels) == 0 {
		defaultChannels = []string{ChannelConsole}
	}
	return &Dispatcher{
		sinks: map[string]Sink{
			ChannelConsole: consoleSink{},
			ChannelEmail:   emailSink{},
			ChannelPush:    pushSink{},
			ChannelSMS:     smsSink{},
		},
		defaultChannels: defaultChannels,
	}
}

// RegisterSink replaces the delivery implementation for a channel. Real
// gateways plug in here; the defaults only log.
func (d *Dispatcher) RegisterSink(channel string, s Sink) {
	d.sinks[channel] = s
}

// Dispatch is fire-and-forget: it never returns an error and a panicking sink
// is recovered and logged.
func (d *Dispatcher) Dispatch(n Notification) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Notification delivery panicked",
				zap.String("kind", n.Kind),
				zap.String("target_user_id", n.TargetUserId),
				zap.Any("panic", r))
		}
	}()

	message := d.buildMessage(n)

	channels := n.Channels
	if len(channels) == 0 {
		channels = d.defaultChannels
	}

	for _, channel := range channels {
		sink, ok := d.sinks[channel]
		if !ok {
			zap.L().Warn("[MOCK UNKNOWN CHANNEL]",
				zap.String("channel", channel),
				zap.String("message", message))
			continue
		}
		sink.Deliver(n.TargetUserId, message, n.Payload)
	}
}

func (d *Dispatcher) buildMessage(n Notification) string {
	p := n.Payload
	switch n.Kind {
	case KindNewContribution:
		user := p.User
		if user == "" {
			user = "Anonyme"
		}
		return fmt.Sprintf("Nouvelle contribution de %s sur %q par %s !",
			p.Amount.String(), p.CagnotteTitle, user)

	case KindCagnotteClosed:
		return fmt.Sprintf("La cagnotte %q a été clôturée !", p.CagnotteTitle)

	case KindPaymentResult:
		if p.Status == PaymentStatusSuccess {
			message := fmt.Sprintf("Votre paiement de %s pour %q a été effectué avec succès !",
				p.Amount.String(), p.CagnotteTitle)
			if p.ReceiptLink != "" {
				message += fmt.Sprintf(" Reçu disponible ici : %s", p.ReceiptLink)
			}
			return message
		}
		message := fmt.Sprintf("Votre paiement de %s pour %q a échoué.",
			p.Amount.String(), p.CagnotteTitle)
		if p.RetryLink != "" {
			message += fmt.Sprintf(" Réessayez ici : %s", p.RetryLink)
		}
		return message

	default:
		return fmt.Sprintf("Notification [%s] pour l'utilisateur %s", n.Kind, n.TargetUserId)
	}
}

type consoleSink struct{}

func (consoleSink) Deliver(targetUserId, message string, _ Payload) {
	zap.L().Info("[NOTIF MOCK][console]",
		zap.String("user_id", targetUserId),
		zap.String("message", message))
}

type emailSink struct{}

func (emailSink) Deliver(_, message string, p Payload) {
	to := p.UserEmail
	if to == "" {
		to = "user@example.com"
	}
	zap.L().Info("[EMAIL MOCK]",
		zap.String("to", to),
		zap.String("message", message))
}

type pushSink struct{}

func (pushSink) Deliver(targetUserId, message string, _ Payload) {
	zap.L().Info("[PUSH MOCK]",
		zap.String("user_id", targetUserId),
		zap.String("message", message))
}

type smsSink struct{}

func (smsSink) Deliver(_, message string, p Payload) {
	to := p.UserPhone
	if to == "" {
		to = "+000000000"
	}
	zap.L().Info("[SMS MOCK]",
		zap.String("to", to),
		zap.String("message", message))
}
