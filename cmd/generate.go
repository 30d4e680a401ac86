package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"autoreel/internal/app"
	"autoreel/internal/distribution"
	"autoreel/internal/reel"
	"autoreel/internal/videogen"
	"autoreel/internal/workflow"
	"autoreel/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var (
	genProduct     string
	genDescription string
	genBenefits    []string
	genTone        string
	genDuration    int
	genPlatforms   []string
	genRatios      []string
	genYes         bool
)

var aspectRatioChoices = []string{"9:16", "1:1", "16:9"}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a product reel and publish it",
	Long: `Walk through the full workflow: describe the product, review the
generated script, render the video, and publish to the selected
platforms. Flags prefill the form; --yes skips the confirmation gates.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genProduct, "product", "p", "", "Product name")
	generateCmd.Flags().StringVarP(&genDescription, "description", "d", "", "Product description")
	generateCmd.Flags().StringSliceVarP(&genBenefits, "benefit", "b", nil, "Product benefit (repeatable)")
	generateCmd.Flags().StringVarP(&genTone, "tone", "t", "", "Script tone")
	generateCmd.Flags().IntVar(&genDuration, "duration", 0, "Target duration in seconds")
	generateCmd.Flags().StringSliceVar(&genPlatforms, "platforms", nil, "Target platforms")
	generateCmd.Flags().StringSliceVar(&genRatios, "aspect-ratios", nil, "Aspect ratios for the render")
	generateCmd.Flags().BoolVarP(&genYes, "yes", "y", false, "Skip confirmation gates")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	req, err := collectRequest(cfg)
	if err != nil {
		return err
	}

	orchestrator := service.Orchestrator()
	run, err := orchestrator.NewRun(req)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("🎬 " + req.ProductName))

	generated, err := runWithSpinner("Generating script", func() (*reel.GeneratedScript, error) {
		return orchestrator.Submit(ctx, run)
	})
	if err != nil {
		return err
	}

	generated, err = scriptGate(ctx, orchestrator, run, generated)
	if err != nil {
		return err
	}
	if generated == nil {
		orchestrator.Abandon(run)
		fmt.Println(dimStyle.Render("Run abandoned."))
		return nil
	}

	job, err := videoGate(ctx, orchestrator, run)
	if err != nil {
		return err
	}
	if job == nil {
		orchestrator.Abandon(run)
		fmt.Println(dimStyle.Render("Run abandoned."))
		return nil
	}

	fmt.Println(successStyle.Render("✓ Video ready: " + job.VideoURL))

	return uploadGate(ctx, service, run, generated, job)
}

func collectRequest(cfg *config.Config) (reel.ScriptRequest, error) {
	req := reel.ScriptRequest{
		ProductName:        strings.TrimSpace(genProduct),
		ProductDescription: strings.TrimSpace(genDescription),
		Benefits:           genBenefits,
		Tone:               genTone,
		PrimaryLanguage:    cfg.Content.DefaultLanguage,
		DurationSeconds:    genDuration,
		Platforms:          genPlatforms,
		AspectRatios:       genRatios,
	}
	if req.Tone == "" {
		req.Tone = cfg.Content.DefaultTone
	}
	if req.DurationSeconds == 0 {
		req.DurationSeconds = cfg.Content.DefaultDuration
	}
	if len(req.Platforms) == 0 {
		req.Platforms = cfg.Platforms.Default
	}

	// --product short-circuits the form for scripted runs
	if req.ProductName != "" && req.ProductDescription != "" {
		return req, nil
	}

	var benefits, duration string
	toneOptions := make([]huh.Option[string], 0, len(reel.AllowedTones))
	for _, t := range reel.AllowedTones {
		toneOptions = append(toneOptions, huh.NewOption(t, t))
	}
	platformOptions := make([]huh.Option[string], 0, len(config.DefaultPlatforms))
	for _, p := range config.DefaultPlatforms {
		platformOptions = append(platformOptions, huh.NewOption(p, p).Selected(contains(req.Platforms, p)))
	}
	ratioOptions := make([]huh.Option[string], 0, len(aspectRatioChoices))
	for _, r := range aspectRatioChoices {
		ratioOptions = append(ratioOptions, huh.NewOption(r, r).Selected(r == "9:16" || contains(req.AspectRatios, r)))
	}
	duration = strconv.Itoa(req.DurationSeconds)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Product name").
				Value(&req.ProductName).
				Validate(required("product name")),
			huh.NewText().
				Title("Product description").
				Value(&req.ProductDescription).
				Validate(required("product description")),
			huh.NewText().
				Title("Key benefits").
				Description("One per line, optional").
				Value(&benefits),
			huh.NewText().
				Title("Image analysis").
				Description("Notes from product imagery, optional").
				Value(&req.ImageAnalysis),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tone").
				Options(toneOptions...).
				Value(&req.Tone),
			huh.NewInput().
				Title("Duration (seconds)").
				Value(&duration).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return errors.New("enter a positive number of seconds")
					}
					return nil
				}),
			huh.NewMultiSelect[string]().
				Title("Platforms").
				Options(platformOptions...).
				Value(&req.Platforms),
			huh.NewMultiSelect[string]().
				Title("Aspect ratios").
				Options(ratioOptions...).
				Value(&req.AspectRatios),
		),
	)
	if err := form.Run(); err != nil {
		return req, err
	}

	req.ProductName = strings.TrimSpace(req.ProductName)
	req.Benefits = splitLines(benefits)
	req.DurationSeconds, _ = strconv.Atoi(strings.TrimSpace(duration))
	return req, nil
}

// scriptGate shows the script and loops until the user accepts it,
// regenerates, or quits. Returns nil when the run should be abandoned.
func scriptGate(ctx context.Context, orchestrator *workflow.Orchestrator, run *workflow.Run, generated *reel.GeneratedScript) (*reel.GeneratedScript, error) {
	for {
		printScript(generated)

		if genYes {
			return generated, nil
		}

		var choice string
		err := huh.NewSelect[string]().
			Title("Happy with this script?").
			Options(
				huh.NewOption("Create the video", "confirm"),
				huh.NewOption("Regenerate the script", "reject"),
				huh.NewOption("Quit", "quit"),
			).
			Value(&choice).
			Run()
		if err != nil {
			return nil, err
		}

		switch choice {
		case "confirm":
			return generated, nil
		case "quit":
			return nil, nil
		}

		regenerated, err := runWithSpinner("Regenerating script", func() (*reel.GeneratedScript, error) {
			return orchestrator.Reject(ctx, run)
		})
		if err != nil {
			fmt.Println(failStyle.Render("Regeneration failed: " + err.Error()))
			continue
		}
		generated = regenerated
	}
}

// autoRetryBudget caps unattended render retries when --yes skips the
// retry prompt; a broken provider must not loop forever.
const autoRetryBudget = 1

// videoGate renders the video, offering a retry on failure. Returns nil
// when the user gives up; with --yes a persistent failure is surfaced
// after the automatic retry budget runs out.
func videoGate(ctx context.Context, orchestrator *workflow.Orchestrator, run *workflow.Run) (*videogen.Job, error) {
	job, err := runWithSpinner("Rendering video", func() (*videogen.Job, error) {
		return orchestrator.ConfirmVideo(ctx, run)
	})
	retries := 0
	for err != nil {
		var genErr *videogen.GenerationError
		if !errors.As(err, &genErr) {
			return nil, err
		}
		fmt.Println(failStyle.Render("✗ " + genErr.Error()))

		prompt := promptRetryRender
		if genYes {
			prompt = nil
		}
		retry, promptErr := shouldRetryRender(retries, prompt)
		if promptErr != nil {
			return nil, promptErr
		}
		if !retry {
			if genYes {
				return nil, err
			}
			return nil, nil
		}
		retries++

		job, err = runWithSpinner("Rendering video", func() (*videogen.Job, error) {
			return orchestrator.RetryVideo(ctx, run)
		})
	}
	return job, nil
}

// shouldRetryRender decides whether to retry a failed render. A nil
// prompt means nobody is watching; retries then stop once the automatic
// budget is spent.
func shouldRetryRender(retries int, prompt func() (bool, error)) (bool, error) {
	if prompt == nil {
		return retries < autoRetryBudget, nil
	}
	return prompt()
}

func promptRetryRender() (bool, error) {
	retry := false
	if err := huh.NewConfirm().
		Title("Retry video generation?").
		Description("The script is kept; only the render is retried.").
		Value(&retry).
		Run(); err != nil {
		return false, err
	}
	return retry, nil
}

func uploadGate(ctx context.Context, service *app.Service, run *workflow.Run, generated *reel.GeneratedScript, job *videogen.Job) error {
	orchestrator := service.Orchestrator()
	req := run.Request()

	upload := genYes
	if !genYes {
		if err := huh.NewConfirm().
			Title("Publish this video?").
			Value(&upload).
			Run(); err != nil {
			return err
		}
	}
	if !upload {
		if err := orchestrator.DeclineUpload(ctx, run); err != nil {
			return err
		}
		fmt.Println(dimStyle.Render("Finished without publishing."))
		return nil
	}

	platforms := req.Platforms
	if !genYes {
		options := make([]huh.Option[string], 0, len(platforms))
		for _, p := range platforms {
			options = append(options, huh.NewOption(p, p).Selected(true))
		}
		if err := huh.NewMultiSelect[string]().
			Title("Publish to").
			Options(options...).
			Value(&platforms).
			Run(); err != nil {
			return err
		}
	}
	if len(platforms) == 0 {
		if err := orchestrator.DeclineUpload(ctx, run); err != nil {
			return err
		}
		fmt.Println(dimStyle.Render("No platforms selected; finished without publishing."))
		return nil
	}

	caption, hashtags := defaultCaption(generated, platforms)
	if !genYes {
		picked, err := pickCaption(ctx, service, req, generated, caption)
		if err != nil {
			return err
		}
		caption = picked
	}

	outcome, err := runWithSpinner("Publishing", func() (*distribution.Outcome, error) {
		return orchestrator.ConfirmUpload(ctx, run, caption, hashtags, platforms)
	})
	if err != nil {
		return err
	}

	printOutcome(outcome)
	return nil
}

// pickCaption offers the platform caption plus LLM-suggested options,
// falling back to the default when suggestions are unavailable.
func pickCaption(ctx context.Context, service *app.Service, req reel.ScriptRequest, generated *reel.GeneratedScript, fallback string) (string, error) {
	suggester := service.Captions()
	if suggester == nil {
		return fallback, nil
	}

	count := service.Config().Content.CaptionOptions
	options, err := runWithSpinner("Suggesting captions", func() ([]string, error) {
		return suggester.CaptionOptions(ctx, req, generated.FinalScript, count)
	})
	if err != nil || len(options) == 0 {
		return fallback, nil
	}

	choices := []huh.Option[string]{huh.NewOption(fallback, fallback)}
	for _, opt := range options {
		if opt != fallback {
			choices = append(choices, huh.NewOption(opt, opt))
		}
	}

	picked := fallback
	if err := huh.NewSelect[string]().
		Title("Caption").
		Options(choices...).
		Value(&picked).
		Run(); err != nil {
		return "", err
	}
	return picked, nil
}

func defaultCaption(generated *reel.GeneratedScript, platforms []string) (string, []string) {
	for _, p := range platforms {
		if c, ok := generated.Captions[p]; ok && c.Caption != "" {
			return c.Caption, c.Hashtags
		}
	}
	for _, c := range generated.Captions {
		return c.Caption, c.Hashtags
	}
	return generated.Outline.Hook, nil
}

func printScript(generated *reel.GeneratedScript) {
	fmt.Println(sectionStyle.Render("Outline"))
	fmt.Println("  Hook:  " + generated.Outline.Hook)
	if generated.Outline.ValuePoints != "" {
		fmt.Println("  Value: " + generated.Outline.ValuePoints)
	}
	if generated.Outline.ObjectionHandling != "" {
		fmt.Println("  Objection: " + generated.Outline.ObjectionHandling)
	}
	fmt.Println("  CTA:   " + generated.Outline.CallToAction)
	fmt.Println()
	fmt.Println(sectionStyle.Render("Script"))
	fmt.Println(generated.FinalScript)
	fmt.Println()
}

func printOutcome(outcome *distribution.Outcome) {
	fmt.Println()
	fmt.Println(sectionStyle.Render("Results (" + string(outcome.Status()) + ")"))
	for platform, result := range outcome.Results {
		line := fmt.Sprintf("%-10s %s", platform, result.Message)
		if result.Status == distribution.StatusSuccess {
			if result.URL != "" {
				line = fmt.Sprintf("%-10s %s", platform, result.URL)
			}
			fmt.Println(successStyle.Render("  ✓ " + line))
		} else {
			fmt.Println(failStyle.Render("  ✗ " + line))
		}
	}
}

func runWithSpinner[T any](title string, fn func() (T, error)) (T, error) {
	var out T
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { out, err = fn() }).
		Run()
	return out, err
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
