package mailer

import "log"

type LocalSender struct {
	logger *log.Logger
}

func NewLocalSender(logger *log.Logger) *LocalSender {
	if logger == nil {
		logger = log.Default()
	}
	return &LocalSender{logger: logger}
}

func (s *LocalSender) Send(to, subject, textBody string, attachment *Attachment) error {
	if attachment != nil {
		s.logger.Printf("mailer.local: to=%s subject=%q body=%q attachment=%s (%d bytes)",
			to, subject, textBody, attachment.Filename, len(attachment.Data))
		return nil
	}
	s.logger.Printf("mailer.local: to=%s subject=%q body=%q", to, subject, textBody)
	return nil
}
