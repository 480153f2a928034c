// Package services отправляет письма по событиям из очереди уведомлений.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/lib/smtp"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// SenderService формирует и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendGroupCreated уведомляет владельца о созданной группе и конце пробного периода.
func (s *SenderService) SendGroupCreated(body []byte) error {
	const op = "services.sender.SendGroupCreated"
	var event models.GroupCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: unmarshal: %w: %w", op, models.ErrInvalidInput, err)
	}

	text := fmt.Sprintf("Здравствуйте, %s!\n\nГруппа «%s» создана, подписка оформлена.", event.Username, event.GroupName)
	if event.TrialEndDate != nil {
		text += fmt.Sprintf("\nПробный период действует до %s.", event.TrialEndDate.Format("02.01.2006"))
	}
	return s.send(op, event.Email, "Группа создана", text)
}

// SendApplicationNotice сообщает заявителю о приёме заявки или о решении по ней.
func (s *SenderService) SendApplicationNotice(body []byte) error {
	const op = "services.sender.SendApplicationNotice"
	var notice models.ApplicationDecision
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: unmarshal: %w: %w", op, models.ErrInvalidInput, err)
	}

	var subject, text string
	switch notice.Status {
	case models.ApplicationPending:
		subject = "Заявка получена"
		text = fmt.Sprintf("Здравствуйте, %s!\n\nМы получили вашу заявку на роль владельца групп и рассмотрим её в ближайшее время.", notice.Name)
	case models.ApplicationApproved:
		subject = "Заявка одобрена"
		text = fmt.Sprintf("Здравствуйте, %s!\n\nВаша заявка одобрена. Теперь вы можете войти в кабинет владельца.", notice.Name)
	case models.ApplicationRejected:
		subject = "Заявка отклонена"
		text = fmt.Sprintf("Здравствуйте, %s!\n\nК сожалению, ваша заявка отклонена.", notice.Name)
	default:
		return fmt.Errorf("%s: unknown status %q: %w", op, notice.Status, models.ErrInvalidInput)
	}
	if notice.Note != "" {
		text += "\n\nКомментарий: " + notice.Note
	}
	return s.send(op, notice.Email, subject, text)
}

// SendTrialEnding напоминает владельцу, что завтра заканчивается пробный
// период и начнутся списания.
func (s *SenderService) SendTrialEnding(body []byte) error {
	const op = "services.sender.SendTrialEnding"
	var notice models.TrialEndingNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: unmarshal: %w: %w", op, models.ErrInvalidInput, err)
	}

	text := fmt.Sprintf("Здравствуйте, %s!\n\nПробный период группы «%s» заканчивается %s.\nДалее подписка стоит %d.%02d %s в месяц.",
		notice.Username, notice.GroupName, notice.TrialEndDate.Format("02.01.2006"),
		notice.Price/100, notice.Price%100, notice.Currency)
	return s.send(op, notice.Email, "Пробный период заканчивается", text)
}

func (s *SenderService) send(op, to, subject, text string) error {
	log := s.log.With(slog.String("op", op))
	if to == "" {
		return fmt.Errorf("%s: empty recipient: %w", op, models.ErrInvalidInput)
	}

	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		text,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err = client.Mail(from); err != nil {
		log.Error("failed to set mail sender", sl.Err(err))
		return fmt.Errorf("%s: mail: %w", op, err)
	}
	if err = client.Rcpt(to); err != nil {
		log.Error("failed to set recipient", sl.Err(err))
		return fmt.Errorf("%s: rcpt %s: %w", op, to, err)
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get write closer", sl.Err(err))
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		log.Error("failed to write message", sl.Err(err))
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		log.Error("failed to close write closer", sl.Err(err))
		return fmt.Errorf("%s: close: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: quit: %w", op, err)
	}

	log.Info("email sent successfully", slog.String("to", to), slog.String("subject", subject))
	return nil
}
