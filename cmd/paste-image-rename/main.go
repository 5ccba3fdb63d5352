package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/config"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/renamer"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/vault"
	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

var (
	appVersion = "0.1.0"

	cfgFile      string
	vaultDir     string
	namePattern  string
	imageNameKey string
	dupAtStart   bool
	dupDelimiter string
	dupAlways    bool
	autoRename   bool
	excludeExt   string
	useExifDate  bool
	slugifyStem  bool
	outputFormat string
	maxWidth     int
	maxHeight    int
	jpgQuality   float64
	logFile      string
	logJSON      bool
	dryRun       bool
	yes          bool
	matchName    string
	matchExt     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paste-image-rename",
	Short: "Rename and convert pasted attachments in a markdown vault",
	Long: `paste-image-rename generates deterministic names for pasted attachments
from a template ({{fileName}}, {{dirName}}, {{imageNameKey}}, {{firstHeading}},
{{DATE:...}}), resolves duplicate names with numeric suffixes, rewrites the
links that reference the renamed files, and optionally re-encodes images.`,
}

var renameCmd = &cobra.Command{
	Use:   "rename <note> <attachment>",
	Short: "Rename one attachment referenced by a note",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var batchCmd = &cobra.Command{
	Use:   "batch <note>",
	Short: "Propose and apply renames for every attachment a note references",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var renameAllCmd = &cobra.Command{
	Use:   "rename-all <note>",
	Short: "Instantly rename every image a note references",
	Args:  cobra.ExactArgs(1),
	RunE:  runRenameAll,
}

var convertCmd = &cobra.Command{
	Use:   "convert <note>",
	Short: "Re-encode the images a note references into a target format",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var convertAutoCmd = &cobra.Command{
	Use:   "convert-auto <note>",
	Short: "Re-encode images using the configured format selection policy",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvertAuto,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the most recent rename batch",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(renameAllCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(convertAutoCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file path")
	pf.StringVarP(&vaultDir, "vault", "v", ".", "vault root directory")
	pf.StringVarP(&namePattern, "pattern", "p", "", "name pattern, e.g. {{imageNameKey}}-{{DATE:YYYYMMDD}}")
	pf.StringVar(&imageNameKey, "key", "", "frontmatter key read by {{imageNameKey}}")
	pf.BoolVar(&dupAtStart, "dup-at-start", false, "put the duplicate number before the stem")
	pf.StringVar(&dupDelimiter, "dup-delimiter", "", "delimiter between stem and duplicate number")
	pf.BoolVar(&dupAlways, "dup-always", false, "always append a duplicate number")
	pf.BoolVar(&autoRename, "auto", false, "apply meaningful names without confirmation")
	pf.StringVar(&excludeExt, "exclude-ext", "", "regexp of extensions to leave alone")
	pf.BoolVar(&useExifDate, "use-exif-date", false, "format {{DATE:...}} with the image capture time")
	pf.BoolVar(&slugifyStem, "slugify", false, "slugify generated stems")
	pf.StringVar(&logFile, "log-file", "", "log file path")
	pf.BoolVar(&logJSON, "log-json", false, "output JSON logs")
	pf.BoolVar(&dryRun, "dry-run", false, "show what would happen without touching files")
	pf.BoolVarP(&yes, "yes", "y", false, "apply proposals without prompting")

	batchCmd.Flags().StringVar(&matchName, "match", "", "regexp matched against attachment names")
	batchCmd.Flags().StringVar(&matchExt, "ext", "", "regexp matched against attachment extensions")
	convertCmd.Flags().StringVar(&matchName, "match", "", "regexp matched against attachment names")
	convertCmd.Flags().StringVar(&matchExt, "ext", "", "regexp matched against attachment extensions")
	convertCmd.Flags().StringVarP(&outputFormat, "format", "f", "jpg", "target format: jpg, webp, avif, png")
	convertCmd.Flags().IntVar(&maxWidth, "max-width", 0, "downscale images wider than this")
	convertCmd.Flags().IntVar(&maxHeight, "max-height", 0, "downscale images taller than this")
	convertCmd.Flags().Float64Var(&jpgQuality, "jpg-quality", 0, "jpg encode quality (0..1)")
	convertAutoCmd.Flags().IntVar(&maxWidth, "max-width", 0, "downscale images wider than this")
	convertAutoCmd.Flags().IntVar(&maxHeight, "max-height", 0, "downscale images taller than this")
}

func loadSettings() (*config.Settings, error) {
	var settings *config.Settings
	var err error

	if cfgFile != "" {
		settings, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		settings = config.DefaultSettings()
	}

	if namePattern != "" {
		settings.ImageNamePattern = namePattern
	}
	if imageNameKey != "" {
		settings.ImageNameKey = imageNameKey
	}
	if dupAtStart {
		settings.DupNumberAtStart = true
	}
	if dupDelimiter != "" {
		settings.DupNumberDelimiter = dupDelimiter
	}
	if dupAlways {
		settings.DupNumberAlways = true
	}
	if autoRename {
		settings.AutoRename = true
	}
	if excludeExt != "" {
		settings.ExcludeExtensionPattern = excludeExt
	}
	if useExifDate {
		settings.UseExifDate = true
	}
	if slugifyStem {
		settings.SlugifyStem = true
	}
	if maxWidth > 0 {
		settings.MaxWidth = maxWidth
	}
	if maxHeight > 0 {
		settings.MaxHeight = maxHeight
	}
	if jpgQuality > 0 {
		settings.JPGQuality = jpgQuality
	}
	if logFile != "" {
		settings.LogFile = logFile
	}
	if logJSON {
		settings.LogJSON = true
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func newRenamer() (*renamer.Renamer, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	v, err := vault.New(vaultDir)
	if err != nil {
		return nil, err
	}

	return renamer.New(settings, v)
}

// buildMatcher compiles the --match/--ext flags into an attachment
// matcher. Both empty means match everything.
func buildMatcher() (func(types.Attachment) bool, error) {
	if matchName == "" && matchExt == "" {
		return nil, nil
	}

	var nameRe, extRe *regexp.Regexp
	var err error
	if matchName != "" {
		nameRe, err = regexp.Compile(matchName)
		if err != nil {
			return nil, fmt.Errorf("invalid --match pattern: %w", err)
		}
	}
	if matchExt != "" {
		extRe, err = regexp.Compile(matchExt)
		if err != nil {
			return nil, fmt.Errorf("invalid --ext pattern: %w", err)
		}
	}

	return func(a types.Attachment) bool {
		if nameRe != nil && !nameRe.MatchString(a.Name) {
			return false
		}
		if extRe != nil && !extRe.MatchString(a.Extension) {
			return false
		}
		return true
	}, nil
}

// promptConfirmer reads the operator's decision from stdin. An empty line
// accepts the proposal, "-" skips the file, anything else is the new name.
func promptConfirmer(in *bufio.Reader) renamer.Confirmer {
	return func(proposal types.GeneratedName) (string, bool) {
		if proposal.IsMeaningful {
			fmt.Printf("proposed name: %s\n", proposal.NewName)
		} else {
			fmt.Printf("proposed name: %s (not derived from note context)\n", proposal.NewName)
		}
		fmt.Print("new name (empty accepts, - skips): ")

		line, err := in.ReadString('\n')
		if err != nil {
			return "", false
		}
		line = strings.TrimSpace(line)
		if line == "-" {
			return "", false
		}
		if line == "" {
			return proposal.NewName, true
		}
		return line, true
	}
}

func runRename(cmd *cobra.Command, args []string) error {
	r, err := newRenamer()
	if err != nil {
		return err
	}
	defer r.Close()

	notePath, target := args[0], args[1]

	if dryRun {
		tasks, err := r.ProposeRenames(notePath, nil)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if task.Attachment.Name == target || task.Attachment.Path == target {
				fmt.Printf("%s -> %s\n", task.Attachment.Path, task.NewName)
			}
		}
		return nil
	}

	confirm := promptConfirmer(bufio.NewReader(os.Stdin))
	if yes {
		confirm = func(proposal types.GeneratedName) (string, bool) {
			return proposal.NewName, true
		}
	}
	return r.RenameOne(notePath, target, confirm)
}

func runBatch(cmd *cobra.Command, args []string) error {
	r, err := newRenamer()
	if err != nil {
		return err
	}
	defer r.Close()

	match, err := buildMatcher()
	if err != nil {
		return err
	}

	notePath := args[0]
	tasks, err := r.ProposeRenames(notePath, match)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("nothing to rename")
		return nil
	}

	for _, task := range tasks {
		marker := ""
		if !task.IsMeaningful {
			marker = "  (skipped: name not derived from note context)"
		}
		fmt.Printf("%s -> %s%s\n", task.Attachment.Path, task.NewName, marker)
	}
	if dryRun {
		return nil
	}

	if !yes {
		fmt.Printf("apply %d renames? [y/N]: ", len(tasks))
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(strings.ToLower(line)) != "y" {
			return nil
		}
	}

	_, err = r.ApplyRenames(notePath, tasks)
	return err
}

func runRenameAll(cmd *cobra.Command, args []string) error {
	r, err := newRenamer()
	if err != nil {
		return err
	}
	defer r.Close()

	notePath := args[0]

	if dryRun {
		tasks, err := r.ProposeRenames(notePath, func(a types.Attachment) bool { return a.IsImage })
		if err != nil {
			return err
		}
		for _, task := range tasks {
			fmt.Printf("%s -> %s\n", task.Attachment.Path, task.NewName)
		}
		return nil
	}

	_, err = r.RenameAllImages(notePath)
	return err
}

func runConvertTo(notePath string, format types.OutputFormat, r *renamer.Renamer) error {
	match, err := buildMatcher()
	if err != nil {
		return err
	}

	tasks, err := r.ProposeConversions(notePath, format, match)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("nothing to convert")
		return nil
	}

	for _, task := range tasks {
		fmt.Printf("%s -> %s\n", task.Attachment.Path, task.TargetFormat)
	}
	if dryRun {
		return nil
	}

	if !yes {
		fmt.Printf("convert %d images? [y/N]: ", len(tasks))
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(strings.ToLower(line)) != "y" {
			return nil
		}
	}

	_, err = r.ApplyConversions(notePath, tasks)
	return err
}

func runConvert(cmd *cobra.Command, args []string) error {
	format := types.OutputFormat(outputFormat)
	switch format {
	case types.FormatJPG, types.FormatWebP, types.FormatAVIF, types.FormatPNG, types.FormatGIF:
	default:
		return fmt.Errorf("unknown format: %s", outputFormat)
	}

	r, err := newRenamer()
	if err != nil {
		return err
	}
	defer r.Close()

	return runConvertTo(args[0], format, r)
}

func runConvertAuto(cmd *cobra.Command, args []string) error {
	r, err := newRenamer()
	if err != nil {
		return err
	}
	defer r.Close()

	return runConvertTo(args[0], types.FormatAuto, r)
}

func runUndo(cmd *cobra.Command, args []string) error {
	r, err := newRenamer()
	if err != nil {
		return err
	}
	defer r.Close()

	if dryRun {
		batch, ok := r.LastBatch()
		if !ok {
			fmt.Println("nothing to undo")
			return nil
		}
		for i := len(batch.Renames) - 1; i >= 0; i-- {
			ren := batch.Renames[i]
			fmt.Printf("%s -> %s\n", ren.NewPath, ren.OldPath)
		}
		return nil
	}

	reverted, err := r.Undo()
	if err != nil {
		return err
	}
	fmt.Printf("reverted %d renames\n", reverted)
	return nil
}
