package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
	"github.com/trezcool/absentee/core/lead"
	emailsvc "github.com/trezcool/absentee/services/email"
	leadsvc "github.com/trezcool/absentee/services/lead"
	"github.com/trezcool/absentee/services/notion"
	"github.com/trezcool/absentee/storage/notiondb"
)

// Deps builds the services shared by the API and the CLI.
type Deps struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	MailSvc    core.EmailService
}

func NewDeps(conf *core.Config, logger core.Logger) *Deps {
	validate, translator := core.NewValidate()
	return &Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		MailSvc:    emailsvc.NewEmailService(conf, logger),
	}
}

// AbsenceService returns the Notion-backed absence service.
// A missing Notion token is reported as *core.ConfigError before any network call.
func (d *Deps) AbsenceService() (*absence.Service, error) {
	if err := d.Conf.CheckNotion(); err != nil {
		return nil, err
	}
	client, err := notion.NewClientFromConfig(d.Conf)
	if err != nil {
		return nil, errors.Wrap(err, "creating notion client")
	}
	return d.AbsenceServiceWithRepo(notiondb.NewRepositoryFromConfig(client, d.Conf, d.Logger)), nil
}

func (d *Deps) AbsenceServiceWithRepo(repo absence.Repository) *absence.Service {
	return absence.NewService(absence.Options{
		Repo:        repo,
		Logger:      d.Logger,
		Validate:    d.Validate,
		Location:    d.Conf.Timezone,
		MailSvc:     d.MailSvc,
		NotifyEmail: d.Conf.NotifyEmail,
	})
}

// LeadService returns the lead service posting to LEAD_ENDPOINT, or *core.ConfigError when it is not set.
// It registers the lead validators, so call it once per Deps.
func (d *Deps) LeadService() (*lead.Service, error) {
	sender, err := leadsvc.NewHTTPSenderFromConfig(d.Conf)
	if err != nil {
		return nil, err
	}
	return d.LeadServiceWithSender(sender), nil
}

func (d *Deps) LeadServiceWithSender(sender lead.Sender) *lead.Service {
	return lead.NewService(sender, d.Validate, d.Translator, d.Logger)
}
