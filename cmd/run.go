package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/manifoldco/promptui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/builder"
	"github.com/spigell/team-builder/internal/cost"
	"github.com/spigell/team-builder/internal/session"
)

const (
	PromptProceed   = "Proceed with these roles"
	PromptEditRoles = "Edit roles"
	PromptAddInfo   = "Add more details"
	PromptStartOver = "Start over"
	PromptExit      = "Exit"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive team building session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("export-dir", "o", "", "directory for the csv reports (default is export.dir from config)")
	viperBindFlag("export.dir", runCmd.Flags().Lookup("export-dir"))
}

// run is the interactive session.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()

	config, logger := setup()
	defer logger.Sync()

	logger.Info("starting the team-builder", zap.String("version", version))

	b, err := newBuilder(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the session", zap.Error(err))
	}

	pterm.DefaultHeader.WithFullWidth().Println("Team Builder")
	pterm.Println("Describe the challenges, needs or goals your company is facing, or paste your company's URL.")

	st := session.New()
	if err := chooseRoles(cmd, b, st); err != nil {
		if errors.Is(err, errExit) {
			logger.Info("exiting", zap.String("reason", "requested by user"))
			return
		}
		logger.Fatal("building job roles", zap.Error(err))
	}

	bar := pb.New(len(st.RelevantRoles))
	bar.Set("prefix", "Estimating salaries ")
	bar.Start()
	err = b.EstimateSalaries(ctx, st, func(done, _ int, _ string) {
		bar.SetCurrent(int64(done))
	})
	bar.Finish()
	if err != nil {
		logger.Fatal("estimating salaries", zap.Error(err))
	}

	renderSalaries(st.Records)

	counts := make([]int, 0, len(st.Records))
	for _, r := range st.Records {
		n, err := promptEmployees(r.JobRole)
		if err != nil {
			logger.Fatal("reading number of employees", zap.Error(err))
		}
		counts = append(counts, n)
	}
	st.SetEmployeeCounts(counts)

	totals := b.CalculateCost(st)
	renderCosts(st.Records, totals)

	full, refined, err := cost.SaveReports(config.Export.Dir, st.Records)
	if err != nil {
		logger.Fatal("saving reports", zap.Error(err))
	}

	logger.Info("reports saved", zap.String("full", full), zap.String("refined", refined))
}

// chooseRoles loops until the session holds relevant roles the user agreed
// to proceed with.
func chooseRoles(cmd *cobra.Command, b *builder.Builder, st *session.State) error {
	ctx := cmd.Context()

	for {
		if !hasRoles(st) {
			input, err := promptText("Description or URL", "", true)
			if err != nil {
				return err
			}

			if err := handleWarning(b.Analyze(ctx, st, input)); err != nil {
				return err
			}
			if !st.ShowJobList {
				continue
			}
		}

		showRoles(st)

		_, action, err := (&promptui.Select{
			Label: "What next?",
			Items: []string{PromptProceed, PromptEditRoles, PromptAddInfo, PromptStartOver, PromptExit},
		}).Run()
		if err != nil {
			return promptErr(err)
		}

		switch action {
		case PromptProceed:
			if len(st.RelevantRoles) == 0 {
				pterm.Warning.Println("There are no relevant roles to estimate. Edit the roles first.")
				continue
			}
			return nil
		case PromptEditRoles:
			if err := editRoles(st); err != nil {
				return err
			}
		case PromptAddInfo:
			info, err := promptText("Anything more you would like to add", "", true)
			if err != nil {
				return err
			}
			if err := handleWarning(b.SubmitAdditionalInfo(ctx, st, info)); err != nil {
				return err
			}
		case PromptStartOver:
			st.Reset()
		case PromptExit:
			return errExit
		}
	}
}

func hasRoles(st *session.State) bool {
	return st.MainResponse != "" && len(st.JobList)+len(st.RelevantRoles)+len(st.IrrelevantRoles) > 0
}

// handleWarning prints user warnings and passes real errors through.
func handleWarning(err error) error {
	var warning *builder.UserWarning
	if errors.As(err, &warning) {
		pterm.Warning.Println(warning.Message)
		return nil
	}
	return err
}

func showRoles(st *session.State) {
	if st.MainResponse != "" {
		pterm.DefaultSection.Println("Analysis")
		pterm.Println(st.MainResponse)
	}

	pterm.DefaultSection.Println("Job Roles You May Need")
	pterm.Println(pterm.Green("Relevant: ") + session.JoinRoles(st.RelevantRoles))
	pterm.Println(pterm.Yellow("Irrelevant: ") + session.JoinRoles(st.IrrelevantRoles))
}

func editRoles(st *session.State) error {
	relevant, err := promptText("Relevant job roles (comma-separated)", session.JoinRoles(st.RelevantRoles), false)
	if err != nil {
		return err
	}
	st.EditRelevant(relevant)

	irrelevant, err := promptText("Irrelevant job roles (comma-separated)", session.JoinRoles(st.IrrelevantRoles), false)
	if err != nil {
		return err
	}
	st.EditIrrelevant(irrelevant)

	return nil
}

func promptText(label, value string, required bool) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   value,
		AllowEdit: value != "",
	}
	if required {
		p.Validate = func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("input is required")
			}
			return nil
		}
	}

	result, err := p.Run()
	if err != nil {
		return "", promptErr(err)
	}
	return result, nil
}

func promptEmployees(role string) (int, error) {
	p := promptui.Prompt{
		Label:   fmt.Sprintf("Number of %s employees", role),
		Default: "0",
		Validate: func(input string) error {
			n, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil {
				return errors.New("enter a whole number")
			}
			if n < 0 {
				return errors.New("number must not be negative")
			}
			return nil
		},
	}

	result, err := p.Run()
	if err != nil {
		return 0, promptErr(err)
	}

	return strconv.Atoi(strings.TrimSpace(result))
}

func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}

func renderSalaries(records []*cost.Record) {
	data := pterm.TableData{{"Job role", "Currency", "Philippines", "United States"}}
	for _, r := range records {
		data = append(data, []string{
			r.JobRole,
			r.Currency,
			cost.FormatUSD(r.SalaryComparison.Philippines),
			cost.FormatUSD(r.SalaryComparison.UnitedStates),
		})
	}

	pterm.DefaultSection.Println("Monthly salaries")
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

func renderCosts(records []*cost.Record, totals cost.Totals) {
	data := pterm.TableData{{"Job role", "Employees", "Philippines", "United States", "Connext", "Savings"}}
	for _, r := range records {
		data = append(data, []string{
			r.JobRole,
			strconv.Itoa(r.EmployeeCount),
			cost.FormatUSD(r.PhilippinesTotalCost),
			cost.FormatUSD(r.UnitedStatesTotalCost),
			cost.FormatUSD(r.ConnextTotalCost),
			cost.FormatUSD(r.TotalSavings),
		})
	}

	pterm.DefaultSection.Println("Cost calculation")
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}

	pterm.Printfln("Total cost if hiring in the Philippines: %s", pterm.Green(cost.FormatUSD(totals.Philippines)))
	pterm.Printfln("Total cost if hiring in the United States: %s", pterm.Red(cost.FormatUSD(totals.UnitedStates)))
	pterm.Printfln("Total cost if hiring through Connext Global Solutions: %s", pterm.Green(cost.FormatUSD(totals.Connext)))
	pterm.Printfln("Total savings if hiring through Connext Global Solutions: %s", pterm.LightGreen(cost.FormatUSD(totals.Savings)))
}
