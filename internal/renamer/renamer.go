// Package renamer orchestrates name generation, duplicate resolution and
// rename commits against the vault.
package renamer

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/config"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/convert"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/history"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/link"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/log"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/metadata"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/namegen"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/policy"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/sanitize"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/vault"
	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

// Confirmer presents a proposed name to the operator and returns the name
// to apply (possibly edited) and whether the operator accepted. A nil
// Confirmer means no confirmation surface is available.
type Confirmer func(proposal types.GeneratedName) (string, bool)

// Renamer wires the engine components together. One Renamer serves one
// vault for the process lifetime; all per-operation state is local.
type Renamer struct {
	settings  *config.Settings
	vault     *vault.Vault
	gen       *namegen.Generator
	meta      *metadata.Extractor
	selector  *policy.FormatSelector
	converter *convert.Converter
	journal   *history.Journal
	logger    *log.Logger

	progressCallback ProgressCallback

	// dirLocks serializes resolve-then-commit windows per directory so
	// rapid successive renames each see the previous commit.
	mu       sync.Mutex
	dirLocks map[string]*sync.Mutex
}

// New creates a renamer for the given vault.
func New(settings *config.Settings, v *vault.Vault) (*Renamer, error) {
	logger, err := log.New(settings.LogFile, settings.LogJSON, true)
	if err != nil {
		return nil, err
	}

	journal, err := history.Load(settings.HistoryFile)
	if err != nil {
		return nil, err
	}

	return &Renamer{
		settings:  settings,
		vault:     v,
		gen:       namegen.New(nil),
		meta:      metadata.New(),
		selector:  policy.NewFormatSelector(convert.Probe{}),
		converter: convert.New(settings.MaxWidth, settings.MaxHeight, settings.JPGQuality),
		journal:   journal,
		logger:    logger,
		dirLocks:  make(map[string]*sync.Mutex),
	}, nil
}

func (r *Renamer) SetProgressCallback(cb ProgressCallback) {
	r.progressCallback = cb
}

func (r *Renamer) Close() error {
	return r.logger.Close()
}

// Logger exposes the notice surface to hosts.
func (r *Renamer) Logger() *log.Logger {
	return r.logger
}

func (r *Renamer) progress(update ProgressUpdate) {
	if r.progressCallback != nil {
		r.progressCallback(update)
	}
}

func (r *Renamer) dirLock(dir string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.dirLocks[dir]
	if !ok {
		l = &sync.Mutex{}
		r.dirLocks[dir] = l
	}
	return l
}

// resolveTarget maps a note reference to an attachment, tolerating
// percent-encoded spellings.
func (r *Renamer) resolveTarget(target, notePath string) (types.Attachment, bool) {
	if a, ok := r.vault.Resolve(target, notePath); ok {
		return a, true
	}
	if decoded, err := url.PathUnescape(target); err == nil && decoded != target {
		return r.vault.Resolve(decoded, notePath)
	}
	return types.Attachment{}, false
}

// Propose generates the candidate name for an attachment in the context of
// a note. Duplicate resolution is deferred to Commit.
func (r *Renamer) Propose(att types.Attachment, notePath string) (types.GeneratedName, error) {
	content, err := r.vault.ReadNote(notePath)
	if err != nil {
		return types.GeneratedName{}, err
	}

	nc := namegen.NoteContext{Path: notePath, Content: content}

	if r.settings.UseExifDate && att.IsImage {
		if capture := r.meta.CaptureTime(r.vault.Abs(att.Path)); capture.Time != nil {
			return r.gen.GenerateAt(att.Extension, nc, r.settings, *capture.Time), nil
		}
	}

	return r.gen.Generate(att.Extension, nc, r.settings), nil
}

// Commit renames an attachment to newName, resolving duplicates against a
// fresh sibling listing. The directory lock is held across list, resolve
// and rename, so overlapping commits into one directory serialize and the
// assigned numbers are strictly increasing in the final directory state.
func (r *Renamer) Commit(att types.Attachment, newName, notePath string) (types.ResolvedName, error) {
	stem, ext := policy.SplitName(newName)

	// A file already bearing the requested name is settled before any
	// listing: the fresh listing necessarily contains the file itself, so
	// resolving would number a name that has no conflict.
	if newName == att.Name {
		return types.ResolvedName{Name: newName, Stem: stem, Extension: ext}, nil
	}

	lock := r.dirLock(att.Dir)
	lock.Lock()
	defer lock.Unlock()

	siblings, err := r.vault.ListSiblingNames(att.Dir)
	if err != nil {
		return types.ResolvedName{}, err
	}

	resolved := policy.Resolve(types.CandidateName{Stem: stem, Extension: ext}, siblings, r.settings.DuplicatePolicy())
	if resolved.Name == att.Name {
		return resolved, nil
	}

	newPath := joinDir(att.Dir, resolved.Name)
	if err := r.vault.Rename(att.Path, newPath); err != nil {
		return types.ResolvedName{}, err
	}

	if err := r.rewriteLinks(notePath, att.Path, newPath); err != nil {
		r.logger.Notice("renamed %s but failed to update links in %s: %v", att.Name, notePath, err)
	}

	r.logger.LogRename(notePath, att.Path, newPath, types.TaskActionRenamed, "")
	return resolved, nil
}

// rewriteLinks updates the note body to reference newPath instead of
// oldPath, trying the old full path, then the bare file name, matching how
// the note may spell the reference. Rewritten references come out in the
// configured link style, wiki embeds or markdown images.
func (r *Renamer) rewriteLinks(notePath, oldPath, newPath string) error {
	content, err := r.vault.ReadNote(notePath)
	if err != nil {
		return err
	}

	updated, ok := link.ReplaceTarget(content, oldPath, newPath, r.settings.WikiLinks)
	if !ok {
		updated, ok = link.ReplaceTarget(content, path.Base(oldPath), path.Base(newPath), r.settings.WikiLinks)
	}
	if !ok {
		return nil
	}

	return r.vault.WriteNote(notePath, updated)
}

// RenameOne renames a single attachment referenced from a note. Meaningful
// proposals auto-apply when configured; everything else goes through the
// confirmer. Operator edits are sanitized before commit.
func (r *Renamer) RenameOne(notePath, target string, confirm Confirmer) error {
	att, ok := r.resolveTarget(target, notePath)
	if !ok {
		return fmt.Errorf("attachment not found: %s", target)
	}

	if r.settings.ExcludesExtension(att.Extension) {
		r.logger.Notice("skipping %s: extension excluded by settings", att.Name)
		return nil
	}

	proposal, err := r.Propose(att, notePath)
	if err != nil {
		return err
	}

	name := proposal.NewName
	if !proposal.IsMeaningful || !r.settings.AutoRename {
		if confirm == nil {
			r.logger.Notice("skipping %s: proposed name needs confirmation", att.Name)
			return nil
		}
		edited, accepted := confirm(proposal)
		if !accepted {
			return nil
		}
		name = sanitizeEdited(edited, att.Extension)
		if name == "" {
			r.logger.Notice("skipping %s: edited name is empty after sanitizing", att.Name)
			return nil
		}
	}

	resolved, err := r.Commit(att, name, notePath)
	if err != nil {
		return err
	}
	if resolved.Name == att.Name {
		return nil
	}

	r.recordBatch("rename", notePath, []history.Rename{{
		Note:      notePath,
		OldPath:   att.Path,
		NewPath:   joinDir(att.Dir, resolved.Name),
		Timestamp: time.Now(),
	}})
	return nil
}

// ProposeRenames builds rename tasks for the attachments referenced by a
// note whose names match the given matcher. A nil matcher matches every
// attachment.
func (r *Renamer) ProposeRenames(notePath string, match func(types.Attachment) bool) ([]types.RenameTask, error) {
	content, err := r.vault.ReadNote(notePath)
	if err != nil {
		return nil, err
	}

	var tasks []types.RenameTask
	for _, target := range link.Targets(content) {
		att, ok := r.resolveTarget(target, notePath)
		if !ok {
			continue
		}
		if r.settings.ExcludesExtension(att.Extension) {
			continue
		}
		if match != nil && !match(att) {
			continue
		}

		proposal, err := r.Propose(att, notePath)
		if err != nil {
			return nil, err
		}
		if proposal.NewName == att.Name {
			continue
		}

		tasks = append(tasks, types.RenameTask{
			Attachment:   att,
			NewName:      proposal.NewName,
			IsMeaningful: proposal.IsMeaningful,
			Status:       types.TaskStatusPending,
		})
	}

	return tasks, nil
}

// ApplyRenames commits a confirmed set of rename tasks. Per-item failures
// are surfaced as notices and the batch continues; already-committed
// renames stay committed if the batch is interrupted.
func (r *Renamer) ApplyRenames(notePath string, tasks []types.RenameTask) (*types.RunSummary, error) {
	startTime := time.Now()
	summary := &types.RunSummary{
		Scanned:   len(tasks),
		Proposed:  len(tasks),
		StartTime: startTime,
	}

	var renames []history.Rename
	for i := range tasks {
		task := &tasks[i]
		r.logger.Progress(i+1, len(tasks), task.Attachment.Name)
		r.progress(ProgressUpdate{
			Type:     "progress",
			Current:  i + 1,
			Total:    len(tasks),
			Filename: task.Attachment.Name,
		})

		if !task.IsMeaningful {
			task.Status = types.TaskStatusSkipped
			task.Action = types.TaskActionSkipped
			summary.Skipped++
			r.logger.Notice("skipping %s: generated name is not meaningful", task.Attachment.Name)
			continue
		}

		resolved, err := r.Commit(task.Attachment, task.NewName, notePath)
		if err != nil {
			task.Status = types.TaskStatusFailed
			task.Action = types.TaskActionFailed
			task.Error = err.Error()
			summary.Failed++
			r.logger.Notice("failed to rename %s: %v", task.Attachment.Name, err)
			continue
		}

		task.Status = types.TaskStatusCompleted
		task.Action = types.TaskActionRenamed
		summary.Renamed++
		renames = append(renames, history.Rename{
			Note:      notePath,
			OldPath:   task.Attachment.Path,
			NewPath:   joinDir(task.Attachment.Dir, resolved.Name),
			Timestamp: time.Now(),
		})
	}

	r.recordBatch("batch-rename", notePath, renames)
	r.finishSummary(summary)
	return summary, nil
}

// RenameAllImages instantly renames every image attachment referenced by a
// note, skipping proposals that are not meaningful.
func (r *Renamer) RenameAllImages(notePath string) (*types.RunSummary, error) {
	tasks, err := r.ProposeRenames(notePath, func(a types.Attachment) bool {
		return a.IsImage
	})
	if err != nil {
		return nil, err
	}
	return r.ApplyRenames(notePath, tasks)
}

// ProposeConversions builds conversion tasks for matched image attachments.
// A FormatAuto target applies the format selection policy per attachment;
// attachments already in their target format are skipped.
func (r *Renamer) ProposeConversions(notePath string, target types.OutputFormat, match func(types.Attachment) bool) ([]types.ConversionTask, error) {
	content, err := r.vault.ReadNote(notePath)
	if err != nil {
		return nil, err
	}

	formatCfg := policy.FormatSettings{
		OutputFormat:   target,
		SmartSelection: r.settings.SmartFormatSelection,
	}
	if target == types.FormatAuto {
		// Policy selection: the configured format and compression toggle
		// decide, including the disabled no-op.
		formatCfg.OutputFormat = r.settings.OutputFormat
		formatCfg.EnableCompression = r.settings.EnableCompression
	} else {
		// An explicit target is its own authorization to convert.
		formatCfg.EnableCompression = true
	}

	var tasks []types.ConversionTask
	for _, ref := range link.Targets(content) {
		att, ok := r.resolveTarget(ref, notePath)
		if !ok || !att.IsImage {
			continue
		}
		if match != nil && !match(att) {
			continue
		}

		chosen := r.selector.Select(att.Extension, formatCfg)
		if chosen == types.FormatFromExtension(att.Extension) {
			continue
		}

		tasks = append(tasks, types.ConversionTask{
			Attachment:   att,
			TargetFormat: chosen,
			Status:       types.TaskStatusPending,
		})
	}

	return tasks, nil
}

// ApplyConversions commits conversion tasks. The replacement file is fully
// written before the original is removed; on any failure the original bytes
// are preserved and the batch continues.
func (r *Renamer) ApplyConversions(notePath string, tasks []types.ConversionTask) (*types.RunSummary, error) {
	startTime := time.Now()
	summary := &types.RunSummary{
		Scanned:   len(tasks),
		Proposed:  len(tasks),
		StartTime: startTime,
	}

	for i := range tasks {
		task := &tasks[i]
		r.logger.Progress(i+1, len(tasks), task.Attachment.Name)
		r.progress(ProgressUpdate{
			Type:     "progress",
			Current:  i + 1,
			Total:    len(tasks),
			Filename: task.Attachment.Name,
		})

		if err := r.convertOne(notePath, task); err != nil {
			task.Status = types.TaskStatusFailed
			task.Action = types.TaskActionFailed
			task.Error = err.Error()
			summary.Failed++
			r.logger.Notice("failed to convert %s: %v", task.Attachment.Name, err)
			continue
		}

		if task.Status == types.TaskStatusSkipped {
			summary.Skipped++
			continue
		}
		summary.Converted++
	}

	r.finishSummary(summary)
	return summary, nil
}

func (r *Renamer) convertOne(notePath string, task *types.ConversionTask) error {
	att := task.Attachment

	data, err := r.vault.ReadBinary(att.Path)
	if err != nil {
		return err
	}

	converted, err := r.converter.Convert(data, task.TargetFormat)
	if err != nil {
		// Re-encode failure is not fatal to the attachment: the original
		// bytes stay in place untouched.
		task.Status = types.TaskStatusSkipped
		task.Action = types.TaskActionSkipped
		r.logger.Notice("keeping %s as %s: %v", att.Name, att.Extension, err)
		return nil
	}

	stem, _ := policy.SplitName(att.Name)
	candidate := types.CandidateName{Stem: stem, Extension: task.TargetFormat.Extension()}

	lock := r.dirLock(att.Dir)
	lock.Lock()
	defer lock.Unlock()

	siblings, err := r.vault.ListSiblingNames(att.Dir)
	if err != nil {
		return err
	}
	resolved := policy.Resolve(candidate, siblings, r.settings.DuplicatePolicy())
	newPath := joinDir(att.Dir, resolved.Name)

	// Write the replacement fully before touching the original.
	if err := r.vault.WriteBinary(newPath, converted); err != nil {
		return err
	}

	if err := r.rewriteLinks(notePath, att.Path, newPath); err != nil {
		r.logger.Notice("converted %s but failed to update links in %s: %v", att.Name, notePath, err)
	}

	if err := r.vault.Remove(att.Path); err != nil {
		return err
	}

	task.Status = types.TaskStatusCompleted
	task.Action = types.TaskActionConverted
	r.logger.LogRename(notePath, att.Path, newPath, types.TaskActionConverted, "")
	return nil
}

// LastBatch returns the batch Undo would revert, without consuming it.
func (r *Renamer) LastBatch() (history.Batch, bool) {
	return r.journal.LastBatch()
}

// Undo reverts the renames of the most recent batch, newest first. It
// returns how many renames were reverted.
func (r *Renamer) Undo() (int, error) {
	batch, ok := r.journal.PopLast()
	if !ok {
		return 0, fmt.Errorf("nothing to undo")
	}

	reverted := 0
	for i := len(batch.Renames) - 1; i >= 0; i-- {
		ren := batch.Renames[i]
		if err := r.vault.Rename(ren.NewPath, ren.OldPath); err != nil {
			r.logger.Notice("failed to revert %s: %v", ren.NewPath, err)
			continue
		}
		if ren.Note != "" {
			if err := r.rewriteLinks(ren.Note, ren.NewPath, ren.OldPath); err != nil {
				r.logger.Notice("reverted %s but failed to update links: %v", ren.OldPath, err)
			}
		}
		reverted++
	}

	if err := r.journal.Save(); err != nil {
		r.logger.Error("failed to save history", err)
	}
	return reverted, nil
}

func (r *Renamer) recordBatch(command, notePath string, renames []history.Rename) {
	if len(renames) == 0 {
		return
	}
	r.journal.Record(history.Batch{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Command:   command,
		Renames:   renames,
		CreatedAt: time.Now(),
	})
	r.logger.Info(fmt.Sprintf("recorded %s batch of %d rename(s)", command, len(renames)))
	if err := r.journal.Save(); err != nil {
		r.logger.Error("failed to save history", err)
	}
}

func (r *Renamer) finishSummary(summary *types.RunSummary) {
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	r.logger.Summary(*summary)
	r.progress(ProgressUpdate{Type: "complete", Summary: summary})
}

func sanitizeEdited(name, extension string) string {
	stem, ext := policy.SplitName(name)
	if ext == "" {
		stem = name
		ext = extension
	}
	stem = sanitize.Stem(stem)
	if stem == "" {
		return ""
	}
	return stem + "." + ext
}

func joinDir(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
