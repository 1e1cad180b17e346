package logging

import (
	"context"

	"mediation-cms/internal/domain/submissions"
	"mediation-cms/internal/platform/logger"
)

// Notifier reemplaza al publisher cuando no hay AMQP_URL: deja el aviso en el log.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{log: log}
}

func (n *Notifier) SubmissionCreated(ctx context.Context, s submissions.Submission) error {
	n.log.Info("submission.created (no broker configured)", map[string]any{
		"submission_id": s.ID,
		"service_type":  s.ServiceType,
	})
	return nil
}
