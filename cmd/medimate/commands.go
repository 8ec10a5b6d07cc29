package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/alerts"
	"github.com/musharraf10/MediMate/internal/dashboard"
	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/report"
	"github.com/musharraf10/MediMate/internal/validate"
	"github.com/musharraf10/MediMate/internal/view"
)

// Sections a write can refresh afterwards.
const (
	sectionDashboard = "dashboard"
	sectionMedicines = "medicines"
	sectionAlerts    = "alerts"
)

func (a *app) userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user [id]",
		Short: "Show or switch the selected user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				id, err := a.user(cmd)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %d\n", id)
				return err
			}
			id, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			if err := saveUserID(id); err != nil {
				return fmt.Errorf("save user: %w", err)
			}
			a.log.Debug("user changed", zap.Int64("user_id", id))
			view.Notify(cmd.OutOrStdout(), view.Success, fmt.Sprintf("Switched to user %d", id))
			return nil
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show stock counters and recently added medicines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showDashboard(cmd)
		},
	}
}

func (a *app) showDashboard(cmd *cobra.Command) error {
	userID, err := a.user(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := a.context(cmd)
	defer cancel()

	now := a.now()
	snap, loadErr := dashboard.Load(ctx, a.api, userID, now)
	err = view.Dashboard(cmd.OutOrStdout(), dashboard.Summarize(snap.All, now), dashboard.Recent(snap.All, dashboard.RecentLimit), now)
	if loadErr != nil {
		return fmt.Errorf("load dashboard: %w", loadErr)
	}
	return err
}

func (a *app) medicinesCmd() *cobra.Command {
	var (
		term   string
		remote bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "medicines",
		Aliases: []string{"ls"},
		Short:   "List medicines of the selected user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listMedicines(cmd, term, remote, asJSON)
		},
	}
	cmd.Flags().StringVarP(&term, "search", "s", "", "filter by name")
	cmd.Flags().BoolVar(&remote, "remote", false, "let the server run the name search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) listMedicines(cmd *cobra.Command, term string, remote, asJSON bool) error {
	userID, err := a.user(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := a.context(cmd)
	defer cancel()

	var list []model.Medicine
	var loadErr error
	if remote && strings.TrimSpace(term) != "" {
		list, loadErr = a.api.Search(ctx, userID, strings.TrimSpace(term))
		if list == nil {
			list = []model.Medicine{}
		}
	} else {
		list, loadErr = dashboard.LoadAll(ctx, a.api, userID)
		list = dashboard.Filter(list, term)
	}

	if asJSON {
		err = printJSON(cmd.OutOrStdout(), list)
	} else {
		err = view.Grid(cmd.OutOrStdout(), list, a.now())
	}
	if loadErr != nil {
		return fmt.Errorf("load medicines: %w", loadErr)
	}
	return err
}

func (a *app) alertsCmd() *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show expired, expiring and low-stock medicines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := alerts.ParseTab(tab)
			if err != nil {
				return err
			}
			return a.showAlerts(cmd, t)
		},
	}
	cmd.Flags().StringVarP(&tab, "tab", "t", string(alerts.TabExpired), "expired, expiring or lowstock")
	return cmd
}

func (a *app) showAlerts(cmd *cobra.Command, tab alerts.Tab) error {
	userID, err := a.user(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := a.context(cmd)
	defer cancel()

	now := a.now()
	snap, loadErr := dashboard.LoadAlerts(ctx, a.api, userID, now)
	err = view.Alerts(cmd.OutOrStdout(), snap, tab, now)
	if loadErr != nil {
		return fmt.Errorf("load alerts: %w", loadErr)
	}
	return err
}

func (a *app) showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one medicine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "medicine id")
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			m, err := a.api.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("load medicine details: %w", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), m)
			}
			return view.Medicine(cmd.OutOrStdout(), m, a.now())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var (
		in     model.MedicineInput
		expiry string
		then   string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medicine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkSection(then); err != nil {
				return err
			}
			userID, err := a.user(cmd)
			if err != nil {
				return err
			}
			in.UserID = userID
			if in.ExpiryDate, err = parseExpiry(expiry); err != nil {
				return err
			}
			in.Name = strings.TrimSpace(in.Name)
			if err := validate.Create(in, a.now()); err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			m, err := a.api.Create(ctx, in)
			if err != nil {
				return fmt.Errorf("add medicine: %w", err)
			}
			a.log.Debug("medicine added", zap.Int64("id", m.ID))
			view.Notify(cmd.OutOrStdout(), view.Success, "Medicine added successfully!")
			return a.refresh(cmd, then)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in.Name, "name", "n", "", "medicine name")
	f.IntVarP(&in.Quantity, "quantity", "q", 0, "units in stock")
	f.StringVarP(&expiry, "expiry", "e", "", "expiry date, YYYY-MM-DD")
	f.StringVar(&then, "then", "", "refresh afterwards: dashboard, medicines or alerts")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("expiry")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var (
		name     string
		quantity int
		expiry   string
		then     string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a medicine; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSection(then); err != nil {
				return err
			}
			id, err := parseID(args[0], "medicine id")
			if err != nil {
				return err
			}
			userID, err := a.user(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			cur, err := a.api.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("load medicine details: %w", err)
			}

			in := cur.Input()
			in.UserID = userID
			f := cmd.Flags()
			if f.Changed("name") {
				in.Name = strings.TrimSpace(name)
			}
			if f.Changed("quantity") {
				in.Quantity = quantity
			}
			if f.Changed("expiry") {
				if in.ExpiryDate, err = parseExpiry(expiry); err != nil {
					return err
				}
			}
			if err := validate.Update(in); err != nil {
				return err
			}

			if _, err := a.api.Update(ctx, id, in); err != nil {
				return fmt.Errorf("update medicine: %w", err)
			}
			view.Notify(cmd.OutOrStdout(), view.Success, "Medicine updated successfully!")
			return a.refresh(cmd, then)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&name, "name", "n", "", "medicine name")
	f.IntVarP(&quantity, "quantity", "q", 0, "units in stock")
	f.StringVarP(&expiry, "expiry", "e", "", "expiry date, YYYY-MM-DD")
	f.StringVar(&then, "then", "", "refresh afterwards: dashboard, medicines or alerts")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	var (
		yes  bool
		then string
	)
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a medicine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSection(then); err != nil {
				return err
			}
			id, err := parseID(args[0], "medicine id")
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
				"Are you sure you want to delete this medicine? This action cannot be undone.") {
				view.Notify(cmd.OutOrStdout(), view.Info, "Cancelled")
				return nil
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := a.api.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete medicine: %w", err)
			}
			view.Notify(cmd.OutOrStdout(), view.Success, "Medicine deleted successfully!")
			return a.refresh(cmd, then)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&then, "then", "", "refresh afterwards: dashboard, medicines or alerts")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the inventory and alerts to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			now := a.now()
			snap, err := dashboard.Load(ctx, a.api, userID, now)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := writeReport(out, snap, now); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			view.Notify(cmd.OutOrStdout(), view.Success, "Report written to "+out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "medimate-report.xlsx", "output file")
	return cmd
}

func writeReport(path string, snap dashboard.Snapshot, now time.Time) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return report.Write(f, snap, now)
}

func (a *app) refresh(cmd *cobra.Command, section string) error {
	switch section {
	case sectionDashboard:
		return a.showDashboard(cmd)
	case sectionMedicines:
		return a.listMedicines(cmd, "", false, false)
	case sectionAlerts:
		return a.showAlerts(cmd, alerts.TabExpired)
	default:
		return nil
	}
}

func checkSection(s string) error {
	switch s {
	case "", sectionDashboard, sectionMedicines, sectionAlerts:
		return nil
	}
	return fmt.Errorf("%w: unknown section %q (want dashboard, medicines or alerts)", errs.ErrValidation, s)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number", errs.ErrValidation, what)
	}
	return id, nil
}

func parseExpiry(s string) (model.Date, error) {
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: expiry date must look like 2006-01-02", errs.ErrValidation)
	}
	return d, nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
