package messaging

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
)

// WhatsAppSender sends guest messages over a linked WhatsApp account.
type WhatsAppSender struct {
	client *whatsmeow.Client
	log    *zap.Logger
}

// NewWhatsAppSender opens the whatsmeow device store under dataDir. The
// account is linked by scanning a QR code on first Connect.
func NewWhatsAppSender(dataDir string, log *zap.Logger) (*WhatsAppSender, error) {
	ctx := context.Background()

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", dataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return &WhatsAppSender{
		client: whatsmeow.NewClient(deviceStore, nil),
		log:    log,
	}, nil
}

// NormalizePhoneNumber converts local phone formats to the international
// form WhatsApp expects. Israeli numbers starting with 0 become 972...
func NormalizePhoneNumber(phoneNumber string) string {
	for _, ch := range []string{"+", " ", "-", "(", ")"} {
		phoneNumber = strings.ReplaceAll(phoneNumber, ch, "")
	}

	if strings.HasPrefix(phoneNumber, "0") && len(phoneNumber) == 10 {
		phoneNumber = "972" + phoneNumber[1:]
	}
	if strings.HasPrefix(phoneNumber, "9720") {
		phoneNumber = "972" + phoneNumber[4:]
	}

	return phoneNumber
}

// Connect links or resumes the WhatsApp session. When the device is not
// yet linked, a QR code is printed for pairing.
func (s *WhatsAppSender) Connect(ctx context.Context) error {
	if s.client.Store.ID == nil {
		qrChan, _ := s.client.GetQRChannel(ctx)
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				q, err := qrcode.New(evt.Code, qrcode.Medium)
				if err != nil {
					fmt.Printf("QR code: %s\n", evt.Code)
				} else {
					fmt.Println("\n" + q.ToSmallString(false))
					fmt.Println("Scan the QR code with WhatsApp (Settings > Linked Devices) to pair.")
				}
			} else {
				s.log.Info("whatsapp login event", zap.String("event", evt.Event))
			}
		}
		return nil
	}

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

func (s *WhatsAppSender) Disconnect() {
	s.client.Disconnect()
}

func (s *WhatsAppSender) Send(ctx context.Context, msg *model.Message) error {
	phone := NormalizePhoneNumber(msg.RecipientPhone)

	resp, err := s.client.IsOnWhatsApp(ctx, []string{phone})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phone)
	}
	jid := resp[0].JID
	if jid.IsEmpty() {
		jid = types.NewJID(phone, types.DefaultUserServer)
	}

	s.log.Debug("sending whatsapp message", zap.String("jid", jid.String()), zap.String("phone", phone))

	body := msg.Body
	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &body,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Info("whatsapp message sent", zap.String("wa_id", sent.ID), zap.Time("timestamp", sent.Timestamp))
	return nil
}
