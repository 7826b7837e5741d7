package commands

import (
	"fmt"

	"github.com/leapstack-labs/sqlshape/internal/cli/output"
	"github.com/leapstack-labs/sqlshape/internal/state"
	"github.com/spf13/cobra"
)

// FamilyDetail is the families command's structured output for one family.
type FamilyDetail struct {
	state.FamilyRow `yaml:",inline"`
	Members         []*state.Member `json:"members" yaml:"members"`
}

// NewFamiliesCommand creates the families command.
func NewFamiliesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "families [digest]",
		Short: "Show families saved by group --save",
		Long: `List the families accumulated in the state database, largest total first.

With a digest (or a unique prefix of one), show that family's signature and
its most recently saved member statements. When two families share a digest,
pass a longer prefix of the family hash instead. With --runs, list the saved runs
instead.`,
		Example: `  # Top 20 families
  sqlshape families --top 20

  # One family and its members
  sqlshape families 3f9a2c --members 10

  # Saved runs
  sqlshape families --runs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFamilies(cmd, args)
		},
	}

	cmd.Flags().Int("top", 0, "Show at most this many families (0 for all)")
	cmd.Flags().Int("members", 3, "Member statements shown for one family")
	cmd.Flags().Bool("runs", false, "List saved runs instead of families")

	return cmd
}

func runFamilies(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	store, cleanup, err := cmdCtx.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if runs, _ := cmd.Flags().GetBool("runs"); runs {
		return listRuns(cmd, cmdCtx, store)
	}
	if len(args) == 1 {
		return showFamily(cmd, cmdCtx, store, args[0])
	}

	top, _ := cmd.Flags().GetInt("top")
	fams, err := store.ListFamilies(ctx, top)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.IsStructured() {
		if fams == nil {
			fams = []*state.FamilyRow{}
		}
		return r.Data(fams)
	}

	if len(fams) == 0 {
		r.Println("No saved families. Run 'sqlshape group --save' first.")
		return nil
	}

	header := append([]string{"Digest", "Total"}, signatureHeader...)
	header = append(header, "Last Seen")
	rows := make([][]string, 0, len(fams))
	for _, f := range fams {
		row := append([]string{f.Digest, itoa(f.Total)}, signatureCells(f.Signature)...)
		row = append(row, formatTime(f.LastSeen))
		rows = append(rows, row)
	}
	r.Table(header, rows)
	return nil
}

func showFamily(cmd *cobra.Command, cmdCtx *CommandContext, store state.Store, key string) error {
	ctx := cmd.Context()
	r := cmdCtx.Renderer

	fam, err := store.GetFamily(ctx, key)
	if err != nil {
		return err
	}

	limit := cmdCtx.Cfg.Group.Members
	members := []*state.Member{}
	if limit > 0 {
		members, err = store.Members(ctx, fam.Hash, limit)
		if err != nil {
			return err
		}
	}

	if r.IsStructured() {
		return r.Data(FamilyDetail{FamilyRow: *fam, Members: members})
	}

	r.Header(1, "Family "+fam.Digest)
	r.Field("Hash", fam.Hash)
	r.Field("Total", itoa(fam.Total))
	r.Field("First Seen", formatTime(fam.FirstSeen))
	r.Field("Last Seen", formatTime(fam.LastSeen))
	signatureFields(r, fam.Signature)

	if len(members) > 0 {
		r.Println()
		r.Header(2, "Members")
		for _, m := range members {
			line := fmt.Sprintf("%d: %s", m.Line, m.SQL)
			if r.EffectiveMode() == output.ModeText {
				r.Println("  " + line)
			} else {
				r.Println("- " + output.FormatCode(line))
			}
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, cmdCtx *CommandContext, store state.Store) error {
	r := cmdCtx.Renderer

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	if r.IsStructured() {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.Data(runs)
	}

	if len(runs) == 0 {
		r.Println("No saved runs.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID, run.Source, formatTime(run.StartedAt),
			itoa(run.Statements), itoa(run.Families), itoa(run.Failures),
		})
	}
	r.Table([]string{"Run", "Source", "Started", "Statements", "Families", "Failures"}, rows)
	return nil
}
