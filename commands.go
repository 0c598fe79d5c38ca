package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"baselinedev/baseline"
	"baselinedev/config"
	"baselinedev/model"
	"baselinedev/prompt"
	"baselinedev/provider"
	"baselinedev/storage"
)

const (
	suggestionLimit      = 5
	checkResultLimit     = 10
	relevantFeatureLimit = 5
	discoveryMonths      = 12
)

// loadData initializes the resolver the way the config asks and, in
// real-time mode, refreshes stale data.
func (a *app) loadData(ctx context.Context) error {
	if err := a.resolver.Initialize(ctx, a.cfg.UseRealTimeData); err != nil {
		return err
	}
	a.resolver.EnsureFresh(ctx)
	return nil
}

func (a *app) threshold(override string) (baseline.Threshold, error) {
	if override == "" {
		override = a.cfg.BaselineThreshold
	}
	t, err := baseline.ParseThreshold(override)
	if err != nil {
		return "", usageErrorf("%v", err)
	}
	return t, nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return usageErrorf("search: a query is required")
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	results := a.resolver.Search(query)
	if len(results) == 0 {
		fmt.Fprintf(a.out, "No features match %q.\n", query)
		a.printSuggestions(query)
		return nil
	}

	for _, f := range results {
		a.printSummary(f)
	}
	fmt.Fprintf(a.out, "\n%d feature(s)\n", len(results))
	return nil
}

func (a *app) cmdLookup(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("lookup: exactly one feature id is required")
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	f, ok := a.resolver.Lookup(args[0])
	if !ok {
		fmt.Fprintf(a.out, "Feature %q not found.\n", args[0])
		a.printSuggestions(args[0])
		return nil
	}
	a.printDetail(f)
	return nil
}

// cmdCheck is the free-text feature check: search, list the first matches
// and show the best one in detail.
func (a *app) cmdCheck(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return usageErrorf("check: a feature name is required")
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	results := a.resolver.Search(query)
	if len(results) == 0 {
		results = a.resolver.Suggest(query, suggestionLimit)
	}
	if len(results) == 0 {
		fmt.Fprintf(a.out, "No features found matching %q.\n", query)
		return nil
	}

	a.printDetail(results[0])

	if len(results) > 1 {
		fmt.Fprintln(a.out, "\nOther matches:")
		for i, f := range results[1:] {
			if i+1 == checkResultLimit {
				break
			}
			a.printSummary(f)
		}
	}
	return nil
}

func (a *app) cmdRecent(ctx context.Context, args []string) error {
	fs := newFlagSet("recent")
	since := fs.String("since", "", "only features after this date (YYYY-MM-DD)")
	months := fs.Int("months", discoveryMonths, "look back this many months when -since is not set")
	thresholdFlag := fs.String("threshold", "", "high or low (default from config)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	threshold, err := a.threshold(*thresholdFlag)
	if err != nil {
		return err
	}
	sinceDate, err := parseSince(*since, *months, time.Now())
	if err != nil {
		return err
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	results := a.resolver.FilterByRecency(sinceDate, threshold)
	fmt.Fprintf(a.out, "Baseline %s since %s:\n\n", threshold, sinceDate.Format("2006-01-02"))
	for _, f := range results {
		d, _ := f.Status.DateFor(threshold)
		fmt.Fprintf(a.out, "  %s  %-32s %s\n", d.Format("2006-01-02"), f.ID, f.Name)
	}
	fmt.Fprintf(a.out, "\n%d feature(s)\n", len(results))
	return nil
}

func parseSince(since string, months int, now time.Time) (time.Time, error) {
	if since != "" {
		t, ok := baseline.ParseDate(since)
		if !ok {
			return time.Time{}, usageErrorf("recent: invalid -since date %q", since)
		}
		return t, nil
	}
	if months <= 0 {
		return time.Time{}, usageErrorf("recent: -months must be positive")
	}
	return now.AddDate(0, -months, 0), nil
}

func (a *app) cmdBaseline(ctx context.Context, args []string) error {
	fs := newFlagSet("baseline")
	thresholdFlag := fs.String("threshold", "", "high or low (default from config)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	threshold, err := a.threshold(*thresholdFlag)
	if err != nil {
		return err
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	results := a.resolver.BaselineFeatures(threshold)
	for _, f := range results {
		a.printSummary(f)
	}
	fmt.Fprintf(a.out, "\n%d of %d features meet Baseline %s\n", len(results), a.resolver.FeatureCount(), threshold)
	return nil
}

func (a *app) cmdGroups(ctx context.Context, _ []string) error {
	if err := a.loadData(ctx); err != nil {
		return err
	}
	for _, g := range a.resolver.ListGroups() {
		fmt.Fprintln(a.out, g)
	}
	return nil
}

func (a *app) cmdGroup(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("group: exactly one group name is required")
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	results := a.resolver.FilterByGroup(args[0])
	if len(results) == 0 {
		fmt.Fprintf(a.out, "No features in group %q.\n", args[0])
		return nil
	}
	for _, f := range results {
		a.printSummary(f)
	}
	return nil
}

func (a *app) cmdRefresh(ctx context.Context, _ []string) error {
	if err := a.resolver.Initialize(ctx, a.cfg.UseRealTimeData); err != nil {
		return err
	}

	if !a.resolver.Refresh(ctx) {
		fmt.Fprintf(a.out, "Refresh failed; still using %s data (%d features).\n",
			a.resolver.Snapshot().Source, a.resolver.FeatureCount())
		return nil
	}

	fmt.Fprintf(a.out, "Loaded %d features from %s at %s.\n",
		a.resolver.FeatureCount(), a.resolver.Snapshot().Source, a.resolver.LastFetchTime().Format(time.RFC3339))
	return nil
}

func (a *app) cmdStatus(ctx context.Context, _ []string) error {
	if err := a.loadData(ctx); err != nil {
		return err
	}

	snap := a.resolver.Snapshot()
	fmt.Fprintf(a.out, "Feature data:   %s (%d features)\n", snap.Source, snap.Len())
	if t := a.resolver.LastFetchTime(); !t.IsZero() {
		fmt.Fprintf(a.out, "Last fetched:   %s\n", t.Format(time.RFC3339))
	}
	fmt.Fprintf(a.out, "Real-time mode: %v\n", a.cfg.UseRealTimeData)
	fmt.Fprintf(a.out, "Primary API:    %s\n", reachability(a.resolver.CheckConnection(ctx)))

	fmt.Fprintf(a.out, "AI backend:     %s\n", a.router.CurrentType())
	if p, err := a.router.Resolve(); err == nil {
		fmt.Fprintf(a.out, "AI model:       %s\n", p.GetModel())
	} else {
		fmt.Fprintf(a.out, "AI model:       %s\n", describeError(err))
	}
	if warning := a.router.MissingModelWarning(ctx); warning != "" {
		fmt.Fprintf(a.out, "Warning:        %s\n", warning)
	}
	fmt.Fprintf(a.out, "API keys:       %s\n", a.configuredKeys())
	return nil
}

// configuredKeys names the cloud backends that have a stored API key.
func (a *app) configuredKeys() string {
	if a.cfg.CredentialStore == nil {
		return "none"
	}

	stored := make(map[string]bool)
	for _, k := range a.cfg.CredentialStore.Keys() {
		stored[k] = true
	}

	var backends []string
	for _, backend := range []string{"claude", "gemini", "openai"} {
		if key, err := config.CredentialKeyFor(backend); err == nil && stored[key] {
			backends = append(backends, backend)
		}
	}
	if len(backends) == 0 {
		return "none"
	}
	return strings.Join(backends, ", ")
}

func reachability(ok bool) string {
	if ok {
		return "reachable"
	}
	return "unreachable"
}

func (a *app) cmdChat(ctx context.Context, args []string) error {
	fs := newFlagSet("chat")
	newConv := fs.Bool("new", false, "start a new conversation")
	file := fs.String("file", "", "attach a source file as context")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	message := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(message) == "" {
		return usageErrorf("chat: a message is required")
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	conv := a.currentConversation(*newConv)

	uc := prompt.UserContext{
		TargetBrowsers:   a.cfg.TargetBrowsers,
		RelevantFeatures: a.relevantFeatures(message),
	}
	if *file != "" {
		code, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read %s: %w", *file, err)
		}
		uc.Code = string(code)
		uc.FileName = filepath.Base(*file)
		uc.Language = languageFor(*file)
	}

	messages := []model.Message{{Role: model.RoleSystem, Content: a.prompts.SystemPrompt()}}
	messages = append(messages, conv.Messages...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: a.prompts.UserPrompt(message, uc)})

	if warning := a.router.MissingModelWarning(ctx); warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	reply, err := a.router.SendMessage(ctx, messages)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, reply)

	// History keeps the plain message; context is rebuilt on every turn.
	conv.Append(model.RoleUser, message)
	conv.Append(model.RoleAssistant, reply)
	if p, err := a.router.Resolve(); err == nil {
		conv.Backend = p.Name()
		conv.Model = p.GetModel()
	}
	if err := a.conversations.Save(conv); err != nil {
		return err
	}
	return a.conversations.SaveCurrentID(conv.ID)
}

func (a *app) currentConversation(fresh bool) *storage.Conversation {
	if !fresh {
		if id, err := a.conversations.LoadCurrentID(); err == nil && id != "" {
			if conv, err := a.conversations.Load(id); err == nil {
				return conv
			}
			config.Debugf("[Main] Current conversation %s unreadable; starting a new one", id)
		}
	}
	return &storage.Conversation{}
}

// relevantFeatures searches each significant word of message and keeps the
// first few distinct hits.
func (a *app) relevantFeatures(message string) []baseline.WebFeature {
	seen := make(map[string]bool)
	var out []baseline.WebFeature

	for _, word := range strings.Fields(message) {
		word = strings.Trim(word, ".,;:!?()[]{}\"'`")
		if len(word) < 4 {
			continue
		}
		for _, f := range a.resolver.Search(word) {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			out = append(out, f)
			if len(out) == relevantFeatureLimit {
				return out
			}
		}
	}
	return out
}

func (a *app) cmdDiscover(ctx context.Context, args []string) error {
	root := "."
	if len(args) > 1 {
		return usageErrorf("discover: at most one directory")
	}
	if len(args) == 1 {
		root = args[0]
	}

	threshold, err := a.threshold("")
	if err != nil {
		return err
	}

	project, err := prompt.ScanProject(root)
	if err != nil {
		return err
	}
	if project.Empty() {
		fmt.Fprintf(a.out, "No HTML, CSS, JavaScript, TypeScript or package.json found under %s.\n", root)
		return nil
	}

	if err := a.loadData(ctx); err != nil {
		return err
	}

	since := time.Now().AddDate(0, -discoveryMonths, 0)
	features := a.resolver.FilterByRecency(since, threshold)
	if len(features) == 0 {
		fmt.Fprintf(a.out, "No new Baseline features found in the last %d months.\n", discoveryMonths)
		return nil
	}

	reply, err := a.router.SendMessage(ctx, []model.Message{
		{Role: model.RoleSystem, Content: a.prompts.SystemPrompt()},
		{Role: model.RoleUser, Content: a.prompts.DiscoveryPrompt(project, features)},
	})
	if err != nil {
		return err
	}

	fmt.Fprint(a.out, prompt.DiscoveryReport(threshold, reply, features, time.Now()))
	return nil
}

func (a *app) cmdRefactor(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("refactor: exactly one file is required")
	}

	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if err := a.loadData(ctx); err != nil {
		return err
	}

	reply, err := a.router.SendMessage(ctx, []model.Message{
		{Role: model.RoleSystem, Content: a.prompts.SystemPrompt()},
		{Role: model.RoleUser, Content: a.prompts.RefactorPrompt(string(code), filepath.Base(args[0]), languageFor(args[0]))},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, reply)
	return nil
}

func (a *app) cmdTest(ctx context.Context, _ []string) error {
	backend := a.router.CurrentType()
	if a.router.TestConnection(ctx) {
		fmt.Fprintf(a.out, "%s: connection OK\n", backend)
		return nil
	}
	return fmt.Errorf("%s: connection failed", backend)
}

func (a *app) cmdModels(ctx context.Context, _ []string) error {
	models, err := a.router.ListLocalModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Fprintln(a.out, "No models installed.")
		return nil
	}
	sort.Strings(models)
	for _, m := range models {
		fmt.Fprintln(a.out, m)
	}
	return nil
}

func (a *app) cmdConversations(_ context.Context, _ []string) error {
	list, err := a.conversations.List()
	if err != nil {
		return err
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%s  %s  %-8s %3d  %s\n",
			c.ID, c.UpdatedAt.Format("2006-01-02 15:04"), c.Backend, c.MessageCount, c.Name)
	}
	return nil
}

func (a *app) cmdSet(_ context.Context, args []string) error {
	if len(args) != 2 {
		return usageErrorf("set: a field and a value are required")
	}
	if err := config.UpdateSetting(a.cfg.DataDir(), args[0], args[1]); err != nil {
		return err
	}

	// A backend change must drop the cached adapter.
	a.router.Reset()
	fmt.Fprintf(a.out, "%s = %s\n", args[0], args[1])
	return nil
}

func (a *app) cmdSetKey(ctx context.Context, args []string) error {
	fs := newFlagSet("set-key")
	skip := fs.Bool("skip-validation", false, "store the key without testing it")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usageErrorf("set-key: a backend and an API key are required")
	}

	backend := string(provider.MapProviderIDToType(fs.Arg(0)))
	apiKey := strings.TrimSpace(fs.Arg(1))

	credKey, err := config.CredentialKeyFor(backend)
	if err != nil {
		return err
	}

	if !*skip {
		valid, err := provider.ValidateAPIKey(ctx, backend, apiKey, provider.SettingsFromConfig(a.cfg))
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("%s rejected the API key (use -skip-validation to store it anyway)", backend)
		}
	}

	if err := a.cfg.CredentialStore.Set(credKey, apiKey); err != nil {
		return err
	}
	if err := a.cfg.CredentialStore.Save(a.cfg.DataDir()); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	// Adapters read credentials once; drop the cached one.
	a.router.Reset()
	fmt.Fprintf(a.out, "Stored API key for %s.\n", backend)
	return nil
}

func (a *app) printSuggestions(query string) {
	suggestions := a.resolver.Suggest(query, suggestionLimit)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(a.out, "Did you mean:")
	for _, f := range suggestions {
		a.printSummary(f)
	}
}

func (a *app) printSummary(f baseline.WebFeature) {
	fmt.Fprintf(a.out, "  %-32s %-40s %s\n", f.ID, f.Name, prompt.StatusText(f))
}

func (a *app) printDetail(f baseline.WebFeature) {
	fmt.Fprintf(a.out, "%s (%s)\n", f.Name, f.ID)
	if f.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", f.Description)
	}

	fmt.Fprintf(a.out, "\nStatus: %s\n", prompt.StatusText(f))
	if f.Status != nil {
		if f.Status.LowDate != "" {
			fmt.Fprintf(a.out, "Newly available: %s\n", f.Status.LowDate)
		}
		if f.Status.HighDate != "" {
			fmt.Fprintf(a.out, "Widely available: %s\n", f.Status.HighDate)
		}
		if len(f.Status.Support) > 0 {
			fmt.Fprintln(a.out, "\nBrowser support:")
			browsers := make([]string, 0, len(f.Status.Support))
			for b := range f.Status.Support {
				browsers = append(browsers, b)
			}
			sort.Strings(browsers)
			for _, b := range browsers {
				fmt.Fprintf(a.out, "  %-16s %s\n", b, f.Status.Support[b])
			}
		}
	}

	if len(f.Group) > 0 {
		fmt.Fprintf(a.out, "\nGroups: %s\n", strings.Join(f.Group, ", "))
	}
	for _, s := range f.Spec {
		fmt.Fprintf(a.out, "Spec: %s\n", s)
	}
	for _, c := range f.Caniuse {
		fmt.Fprintf(a.out, "Can I use: https://caniuse.com/%s\n", c)
	}
}

var languageByExt = map[string]string{
	".html":   "html",
	".htm":    "html",
	".css":    "css",
	".scss":   "scss",
	".js":     "javascript",
	".mjs":    "javascript",
	".jsx":    "javascriptreact",
	".ts":     "typescript",
	".tsx":    "typescriptreact",
	".vue":    "vue",
	".svelte": "svelte",
}

func languageFor(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "plaintext"
}
