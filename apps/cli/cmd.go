package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
	"github.com/trezcool/absentee/core/lead"
)

var isTerminalFunc = term.IsTerminal // mockable

type commandLine struct {
	absenceSvc func() (*absence.Service, error)
	leadSvc    func() (*lead.Service, error)
	mailSvc    core.EmailService // optional; pending emails are flushed before run returns
	translator ut.Translator
	out        io.Writer
	progress   bool // print a line before each network phase
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "absentee",
		Short:         "Notify students of a teacher's absence and submit leads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(
		cli.teachersCmd(),
		cli.notifyCmd(),
		cli.archiveCmd(),
		cli.leadCmd(),
	)
	return root
}

// run executes args (without program name) and prints the error notice on failure.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cli.mailSvc != nil {
		cli.mailSvc.Wait()
	}
	if err != nil {
		cli.printError(err)
	}
	return err
}

func (cli *commandLine) phase(msg string) {
	if cli.progress {
		fmt.Fprintf(cli.out, "> %s...\n", msg)
	}
}

func (cli *commandLine) notice(n absence.Notice) {
	fmt.Fprintf(cli.out, "%s: %s\n", noticePrefix(n.Level), n.Message)
}

func noticePrefix(level absence.NoticeLevel) string {
	switch level {
	case absence.NoticeSuccess:
		return "SUCCESS"
	case absence.NoticeInfo:
		return "INFO"
	default:
		return "ERROR"
	}
}

func (cli *commandLine) printError(err error) {
	var (
		vErrs   validator.ValidationErrors
		valErr  *core.ValidationError
		partErr *absence.PartialWriteError
	)

	switch {
	case errors.As(err, &vErrs):
		cli.notice(absence.Notice{Level: absence.NoticeError, Message: "invalid input"})
		cli.printFields(core.TranslateErrors(vErrs, cli.translator))
	case errors.As(err, &valErr) && valErr.Fields != nil:
		cli.notice(absence.Notice{Level: absence.NoticeError, Message: "invalid input"})
		flds := make(map[string]string, len(valErr.Fields))
		for _, f := range valErr.Fields {
			flds[f.Field] = f.Error
		}
		cli.printFields(flds)
	case errors.As(err, &partErr):
		cli.notice(absence.Notice{Level: absence.NoticeError, Message: err.Error()})
		fmt.Fprintln(cli.out, "Tasks left behind (remove them with `absentee archive ID...`):")
		for _, id := range partErr.Orphans() {
			fmt.Fprintf(cli.out, "  %s\n", id)
		}
	default:
		cli.notice(absence.Notice{Level: absence.NoticeError, Message: err.Error()})
	}
}

func (cli *commandLine) printFields(flds map[string]string) {
	names := make([]string, 0, len(flds))
	for name := range flds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cli.out, "  %s: %s\n", name, flds[name])
	}
}
