package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	urfavecli "github.com/urfave/cli/v2"

	"loanschedule/internal/backend"
	"loanschedule/internal/config"
	"loanschedule/internal/core"
	applog "loanschedule/internal/log"
	"loanschedule/internal/report"
	"loanschedule/internal/resolver"
	"loanschedule/internal/store"
)

const retrievePrompt = "Do you want to retrieve saved loan details? (yes/no): "

// Runner executes the commands against a configuration and a store factory.
type Runner struct {
	cfg     *config.Config
	logger  *applog.Logger
	factory backend.Factory
}

func NewRunner(cfg *config.Config, logger *applog.Logger, factory backend.Factory) *Runner {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if factory == nil {
		factory = backend.NewFactory(logger)
	}
	return &Runner{cfg: cfg, logger: logger.WithComponent(applog.ComponentCLI), factory: factory}
}

func loanFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{Name: "principal", Aliases: []string{"p"}, Usage: "loan amount"},
		&urfavecli.StringFlag{Name: "years", Aliases: []string{"y"}, Value: "0", Usage: "loan term in years"},
		&urfavecli.StringFlag{Name: "months", Aliases: []string{"m"}, Value: "0", Usage: "additional loan term in months"},
		&urfavecli.StringFlag{Name: "rate", Aliases: []string{"r"}, Usage: "annual interest rate as a percentage"},
	}
}

// NewApp builds the command line application.
func (r *Runner) NewApp() *urfavecli.App {
	newFlags := append([]urfavecli.Flag{
		&urfavecli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "save the loan details"},
		&urfavecli.StringFlag{Name: "pdf", Usage: "also write the schedule as PDF to `FILE`"},
	}, loanFlags()...)

	return &urfavecli.App{
		Name:  "loanschedule",
		Usage: "compute and save a loan repayment schedule",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{Name: "backend", Usage: "storage backend: file, sqlite, redis or memory"},
			&urfavecli.StringFlag{Name: "save-dir", Usage: "directory used by the file backend"},
			&urfavecli.StringFlag{Name: "carry", Usage: "balance carry policy: rounded or exact"},
		},
		Before: r.applyOverrides,
		Action: r.interactive,
		Commands: []*urfavecli.Command{
			{
				Name:   "new",
				Usage:  "enter a new loan, from flags or interactively",
				Flags:  newFlags,
				Action: r.newLoan,
			},
			{
				Name:  "show",
				Usage: "regenerate the schedule of the saved loan",
				Flags: []urfavecli.Flag{
					&urfavecli.BoolFlag{Name: "stored", Usage: "print the rows kept by the backend instead of regenerating them"},
				},
				Action: r.show,
			},
			{
				Name:  "pdf",
				Usage: "render the saved loan, or one given by flags, as PDF",
				Flags: append([]urfavecli.Flag{
					&urfavecli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "output `FILE`"},
				}, loanFlags()...),
				Action: r.pdf,
			},
		},
	}
}

func (r *Runner) applyOverrides(c *urfavecli.Context) error {
	if c.IsSet("backend") {
		r.cfg.DataBackend = c.String("backend")
	}
	if c.IsSet("save-dir") {
		r.cfg.SaveDir = c.String("save-dir")
	}
	if c.IsSet("carry") {
		r.cfg.CarryPolicy = c.String("carry")
	}
	return r.cfg.Validate()
}

// interactive mirrors a plain run: offer the saved loan first, otherwise
// ask for a new one.
func (r *Runner) interactive(c *urfavecli.Context) error {
	w := c.App.Writer
	p := resolver.NewPrompter(c.App.Reader, w).WithContext(c.Context)

	retrieve, err := p.AskYesNo(retrievePrompt)
	if err != nil {
		return err
	}
	if retrieve {
		params, err := r.loadSaved(c.Context)
		switch {
		case err == nil:
			return r.emit(c.Context, w, params, false, "")
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintln(w, "No saved loan details found.")
		default:
			return err
		}
	}

	res, err := p.PromptLoan()
	if err != nil {
		return err
	}
	return r.emit(c.Context, w, res.Params, res.Save, "")
}

func (r *Runner) newLoan(c *urfavecli.Context) error {
	w := c.App.Writer
	if !c.IsSet("principal") && !c.IsSet("rate") {
		res, err := resolver.NewPrompter(c.App.Reader, w).WithContext(c.Context).PromptLoan()
		if err != nil {
			return err
		}
		return r.emit(c.Context, w, res.Params, res.Save || c.Bool("save"), c.String("pdf"))
	}

	save := "no"
	if c.Bool("save") {
		save = "yes"
	}
	params, err := r.resolveFlags(c, save)
	if err != nil {
		return err
	}
	return r.emit(c.Context, w, params, c.Bool("save"), c.String("pdf"))
}

func (r *Runner) show(c *urfavecli.Context) error {
	if c.Bool("stored") {
		return r.showStored(c.Context, c.App.Writer)
	}
	params, err := r.loadSaved(c.Context)
	if errors.Is(err, store.ErrNotFound) {
		return errors.New("no saved loan details found")
	}
	if err != nil {
		return err
	}
	return r.emit(c.Context, c.App.Writer, params, false, "")
}

func (r *Runner) showStored(ctx context.Context, w io.Writer) error {
	return r.withStore(ctx, func(ctx context.Context, s store.Store) error {
		loader, ok := s.(store.RowLoader)
		if !ok {
			return fmt.Errorf("%s backend does not keep schedule rows", r.cfg.DataBackend)
		}
		rec, err := s.Load(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return errors.New("no saved loan details found")
		}
		if err != nil {
			return err
		}
		rows, err := loader.LoadRows(ctx)
		if err != nil {
			return err
		}
		params, err := resolver.FromRecord(rec)
		if err != nil {
			return err
		}
		if err := report.WriteDetails(w, params); err != nil {
			return err
		}
		return report.WriteTable(w, rows)
	})
}

func (r *Runner) pdf(c *urfavecli.Context) error {
	var params core.LoanParameters
	var err error
	if c.IsSet("principal") || c.IsSet("rate") {
		params, err = r.resolveFlags(c, "no")
	} else {
		params, err = r.loadSaved(c.Context)
		if errors.Is(err, store.ErrNotFound) {
			return errors.New("no saved loan details found; pass --principal and --rate")
		}
	}
	if err != nil {
		return err
	}

	sched, err := r.generate(params)
	if err != nil {
		return err
	}
	if err := r.writePDF(c.String("out"), sched); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "PDF written to %s\n", c.String("out"))
	return nil
}

func (r *Runner) resolveFlags(c *urfavecli.Context, save string) (core.LoanParameters, error) {
	res := resolver.Resolve(resolver.RawInput{
		Save:       save,
		Principal:  c.String("principal"),
		Years:      c.String("years"),
		Months:     c.String("months"),
		AnnualRate: c.String("rate"),
	})
	if !res.Valid() {
		for _, fe := range res.Errors {
			fmt.Fprintf(c.App.ErrWriter, "%s: %s\n", fe.Field, fe.Message())
		}
		fields := applog.NewFields().WithOperation(applog.OpResolve).WithError(res.Err())
		r.logger.WithComponent(applog.ComponentResolver).Warn("Loan input rejected", fields.ToSlice()...)
		return core.LoanParameters{}, fmt.Errorf("invalid loan details: %w", res.Err())
	}
	return res.Params, nil
}

func (r *Runner) generate(params core.LoanParameters) (core.Schedule, error) {
	policy := core.CarryPolicy(r.cfg.CarryPolicy)
	start := time.Now()
	sched, err := core.GenerateSchedule(params, core.WithCarryPolicy(policy))
	if err != nil {
		return core.Schedule{}, err
	}
	fields := applog.NewFields().
		WithOperation(applog.OpGenerate).
		WithLoan(params.Principal.String(), params.TermMonths, params.AnnualRatePercent.String(), params.Payment.String())
	fields[applog.FieldCarryPolicy] = string(policy)
	fields[applog.FieldDuration] = time.Since(start).Milliseconds()
	r.logger.WithComponent(applog.ComponentSchedule).Debug("Schedule generated", fields.ToSlice()...)
	return sched, nil
}

// emit generates, prints and optionally saves and exports the schedule.
func (r *Runner) emit(ctx context.Context, w io.Writer, params core.LoanParameters, save bool, pdfPath string) error {
	sched, err := r.generate(params)
	if err != nil {
		return err
	}
	if err := report.WriteSchedule(w, sched); err != nil {
		return fmt.Errorf("print schedule: %w", err)
	}
	if err := report.WriteSummary(w, sched.Totals()); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	if save {
		if err := r.save(ctx, sched); err != nil {
			return err
		}
		fmt.Fprintf(w, "Loan details saved (%s backend).\n", r.cfg.DataBackend)
	}
	if pdfPath != "" {
		if err := r.writePDF(pdfPath, sched); err != nil {
			return err
		}
		fmt.Fprintf(w, "PDF written to %s\n", pdfPath)
	}
	return nil
}

func (r *Runner) withStore(ctx context.Context, fn func(ctx context.Context, s store.Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StoreTimeout)
	defer cancel()

	bcfg, err := backend.FromAppConfig(r.cfg)
	if err != nil {
		return err
	}
	res, err := r.factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			r.logger.Warn("Closing store failed", applog.FieldBackend, r.cfg.DataBackend, applog.FieldError, err)
		}
	}()
	return fn(applog.WithLogger(ctx, r.logger), res.Store)
}

func (r *Runner) save(ctx context.Context, sched core.Schedule) error {
	return r.withStore(ctx, func(ctx context.Context, s store.Store) error {
		if err := s.Save(ctx, store.RecordFromParams(sched.Params), sched); err != nil {
			return fmt.Errorf("save loan details: %w", err)
		}
		return nil
	})
}

func (r *Runner) loadSaved(ctx context.Context) (core.LoanParameters, error) {
	var params core.LoanParameters
	err := r.withStore(ctx, func(ctx context.Context, s store.Store) error {
		rec, err := s.Load(ctx)
		if err != nil {
			return err
		}
		params, err = resolver.FromRecord(rec)
		return err
	})
	return params, err
}

func (r *Runner) writePDF(path string, sched core.Schedule) error {
	logger := r.logger.WithComponent(applog.ComponentReport)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := report.WritePDF(f, sched); err != nil {
		f.Close()
		fields := applog.NewFields().WithOperation(applog.OpRender).WithError(err)
		logger.Error("PDF export failed", fields.ToSlice()...)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	logger.Info("PDF written", applog.FieldOperation, applog.OpRender, applog.FieldPath, path, applog.FieldRows, len(sched.Rows))
	return nil
}
