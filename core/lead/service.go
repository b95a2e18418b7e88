package lead

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/absentee/core"
)

const SuccessMessage = "Thank you! Your enquiry has been sent; we will be in touch soon."

type (
	// Sender delivers a lead to the intake endpoint.
	Sender interface {
		Send(ctx context.Context, p Payload) error
	}

	Service struct {
		sender   Sender
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(sender Sender, validate *validator.Validate, translator ut.Translator, logger core.Logger) *Service {
	RegisterValidators(validate, translator)
	return &Service{sender: sender, validate: validate, logger: logger}
}

// Submit cleans and validates the lead, then sends it. Nothing is sent when validation fails.
func (svc *Service) Submit(ctx context.Context, l Lead) error {
	l.Clean()
	if err := svc.validate.Struct(l); err != nil {
		return err
	}

	if err := svc.sender.Send(ctx, l.Payload()); err != nil {
		svc.logger.Error("sending lead", err, map[string]interface{}{"email": l.Email})
		return errors.Wrap(err, "sending lead")
	}
	svc.logger.Info("lead sent", map[string]interface{}{"email": l.Email})
	return nil
}
