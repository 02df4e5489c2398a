package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/command"
	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

type cliApp struct {
	cfg    *config.Config
	store  *catalog.Store
	parser *command.Parser
	log    *logger.Logger
	ui     *display.UI
}

func (a *cliApp) run(ctx context.Context) {
	notifier := display.NewNotifier(a.log, a.store.State(), a.ui.PrintUrgent)
	defer a.store.Subscribe(a.ui.SetState)()
	defer a.store.Subscribe(notifier.Observe)()

	a.refresh(ctx)

	inputCh := a.ui.InputChan()
	for {
		var input string
		select {
		case <-ctx.Done():
			return
		case <-a.ui.QuitChan():
			return
		case input = <-inputCh:
		}

		cmd := a.parser.Parse(input)
		if cmd.Raw == "" {
			continue
		}
		a.log.Debug("command: %s (id=%q arg=%q)", cmd.Kind, cmd.ID, cmd.Arg)
		if cmd.Kind == command.KindQuit {
			a.ui.PrintHint("Bye.")
			return
		}
		a.handle(ctx, cmd)
	}
}

func (a *cliApp) handle(ctx context.Context, cmd command.Command) {
	switch cmd.Kind {
	case command.KindHelp:
		a.showHelp()
	case command.KindList:
		a.showPage()
	case command.KindShow:
		a.showRecipe(ctx, cmd.ID)
	case command.KindCreate:
		a.create(ctx, cmd.Arg)
	case command.KindEdit:
		a.edit(ctx, cmd.ID, cmd.Arg)
	case command.KindDelete:
		a.remove(ctx, cmd.ID)
	case command.KindSearch:
		a.store.SetQuery(cmd.Arg)
		a.showPage()
	case command.KindCuisine:
		a.store.SetCuisine(clearable(cmd.Arg))
		a.showPage()
	case command.KindDifficulty:
		a.setDifficulty(cmd.Arg)
	case command.KindMaxTime:
		a.setMaxTime(cmd.Arg)
	case command.KindTag:
		a.store.SetTags(command.SplitTags(clearable(cmd.Arg)))
		a.showPage()
	case command.KindClear:
		a.store.ClearFilters()
		a.showPage()
	case command.KindPage:
		n, err := strconv.Atoi(cmd.Arg)
		if err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Not a page number: %q", cmd.Arg))
			return
		}
		a.store.SetPage(n)
		a.showPage()
	case command.KindNext:
		a.store.NextPage()
		a.showPage()
	case command.KindPrev:
		a.store.PrevPage()
		a.showPage()
	case command.KindSize:
		n, err := strconv.Atoi(cmd.Arg)
		if err == nil {
			err = a.store.SetPageSize(n)
		} else {
			err = fmt.Errorf("%w: page size %q", domain.ErrInvalidInput, cmd.Arg)
		}
		if err != nil {
			a.reportErr(err)
			return
		}
		a.showPage()
	case command.KindRefresh:
		a.refresh(ctx)
	case command.KindMode:
		a.showMode()
	default:
		a.ui.PrintHint(fmt.Sprintf("Unknown command %q. Type 'help' for the list.", cmd.Raw))
		a.showPage()
	}
}

func (a *cliApp) refresh(ctx context.Context) {
	if err := a.store.FetchAll(ctx); err != nil {
		a.reportErr(err)
	}
	a.showPage()
}

func (a *cliApp) showPage() {
	st := a.store.State()
	a.ui.PrintBlock(display.RenderTable(st.Paged))
	a.ui.PrintHint(display.StatusLine(st))
}

func (a *cliApp) showRecipe(ctx context.Context, id string) {
	r, err := a.store.FetchOne(ctx, id)
	if err != nil {
		a.reportErr(err)
		return
	}
	a.ui.PrintBlock(display.RenderCard(*r))
	if msg := a.store.Err(); msg != "" {
		a.ui.PrintHint("Shown from the local copy: " + msg)
	}
}

func (a *cliApp) create(ctx context.Context, arg string) {
	fields, err := command.ParseFields(arg)
	if err != nil {
		a.reportErr(err)
		return
	}
	in, err := fields.Input()
	if err != nil {
		a.reportErr(err)
		return
	}
	r, err := a.store.CreateRecipe(ctx, in)
	if err != nil {
		a.reportErr(err)
		return
	}
	a.ui.PrintSuccess(fmt.Sprintf("Created #%s %s", r.ID, r.Title))
}

func (a *cliApp) edit(ctx context.Context, id, arg string) {
	fields, err := command.ParseFields(arg)
	if err != nil {
		a.reportErr(err)
		return
	}
	patch, err := fields.Patch()
	if err != nil {
		a.reportErr(err)
		return
	}
	r, err := a.store.UpdateRecipe(ctx, id, patch)
	if err != nil {
		a.reportErr(err)
		return
	}
	a.ui.PrintSuccess(fmt.Sprintf("Updated #%s", r.ID))
	a.ui.PrintBlock(display.RenderCard(*r))
}

func (a *cliApp) remove(ctx context.Context, id string) {
	if err := a.store.DeleteRecipe(ctx, id); err != nil {
		a.reportErr(err)
		return
	}
	a.ui.PrintSuccess("Deleted #" + id)
}

func (a *cliApp) setDifficulty(arg string) {
	if clearable(arg) == "" {
		a.store.SetDifficulty(nil)
		a.showPage()
		return
	}
	d, err := domain.ParseDifficulty(arg)
	if err != nil {
		a.reportErr(err)
		return
	}
	a.store.SetDifficulty(&d)
	a.showPage()
}

func (a *cliApp) setMaxTime(arg string) {
	if clearable(arg) == "" {
		a.store.SetMaxTime(nil)
		a.showPage()
		return
	}
	n, err := command.ParseMinutes(arg)
	if err != nil {
		a.reportErr(err)
		return
	}
	a.store.SetMaxTime(&n)
	a.showPage()
}

func (a *cliApp) showMode() {
	st := a.store.State()
	if st.MockMode {
		a.ui.PrintInfo("Serving from the local dataset. Changes last until exit.")
	} else {
		a.ui.PrintInfo("Connected to " + a.cfg.BaseURL)
	}
	if len(a.cfg.FeatureFlags) > 0 {
		a.ui.PrintHint("feature flags: " + strings.Join(a.cfg.FeatureFlags, ", "))
	}
	if c := a.store.Cuisines(); len(c) > 0 {
		a.ui.PrintHint("cuisines: " + strings.Join(c, ", "))
	}
	if t := a.store.Tags(); len(t) > 0 {
		a.ui.PrintHint("tags: " + strings.Join(t, ", "))
	}
	a.ui.PrintHint(display.StatusLine(st))
}

func (a *cliApp) reportErr(err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.ui.PrintUrgent("No such recipe.")
	case errors.Is(err, context.Canceled):
		a.ui.PrintHint("Cancelled.")
	default:
		a.ui.PrintUrgent(err.Error())
	}
	a.log.Debug("command failed: %v", err)
}

func (a *cliApp) showHelp() {
	a.ui.PrintInfo("Browse:")
	a.ui.PrintHint("  list / ls              Show the current page")
	a.ui.PrintHint("  show <id> / <id>       Show one recipe in full")
	a.ui.PrintHint("  next / prev            Move between pages")
	a.ui.PrintHint("  page <n>               Jump to a page")
	a.ui.PrintHint("  size <n>               Set recipes per page")
	a.ui.PrintHint("  refresh                Reload from the service")
	a.ui.PrintInfo("Filter:")
	a.ui.PrintHint("  search <text>          Match title, description or tags")
	a.ui.PrintHint("  cuisine <name>         Exact cuisine (no argument clears)")
	a.ui.PrintHint("  difficulty <level>     Easy, Medium or Hard (\"any\" clears)")
	a.ui.PrintHint("  maxtime <minutes>      At most this many minutes (\"any\" clears)")
	a.ui.PrintHint("  tag <a,b>              Require every listed tag")
	a.ui.PrintHint("  clear                  Remove all filters")
	a.ui.PrintInfo("Edit:")
	a.ui.PrintHint(`  create title="..." cuisine=... difficulty=... time=30 tags=a,b`)
	a.ui.PrintHint(`  edit <id> field=value ...   ingredients and steps split on ";"`)
	a.ui.PrintHint("  delete <id>")
	a.ui.PrintInfo("Session:")
	a.ui.PrintHint("  mode                   Show backend, flags and facets")
	a.ui.PrintHint("  help / quit")
}

// clearable maps "any" and "all" to the empty string, which clears a filter.
func clearable(arg string) string {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "any", "all", "none":
		return ""
	}
	return strings.TrimSpace(arg)
}
