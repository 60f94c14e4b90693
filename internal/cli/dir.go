package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codalotl/visualdiff/internal/docload"
	"github.com/codalotl/visualdiff/internal/render"
	"github.com/codalotl/visualdiff/internal/simplelogger"
	"github.com/codalotl/visualdiff/internal/visualdiff"
)

// documentExts are the extensions dir diffs.
var documentExts = map[string]bool{".html": true, ".htm": true, ".md": true, ".markdown": true}

func newDirCommand(env *runEnv, flags *commonFlags) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "dir [flags] OLD_DIR NEW_DIR OUT_DIR",
		Short: "Diff every document present in both OLD_DIR and NEW_DIR, writing HTML results to OUT_DIR",
		Long: "Diff every document present in both OLD_DIR and NEW_DIR, writing HTML results to OUT_DIR.\n\n" +
			"Documents are matched by relative path. Results keep the relative path with the extension replaced by .html.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(cmd, env)
			if err != nil {
				return err
			}
			if jobs <= 0 {
				return usageError(fmt.Errorf("--jobs must be > 0 (got %d)", jobs))
			}
			pairs, err := matchDocuments(args[0], args[1])
			if err != nil {
				return runtimeError(err)
			}
			if err := diffDir(pairs, args[0], args[1], args[2], cfg, jobs); err != nil {
				return runtimeError(err)
			}
			for _, rel := range pairs {
				fmt.Fprintln(cmd.OutOrStdout(), outputPath(args[2], rel))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of documents diffed concurrently")
	return cmd
}

// matchDocuments returns the relative paths of documents present in both directories, sorted.
func matchDocuments(oldDir, newDir string) ([]string, error) {
	oldDocs, err := listDocuments(oldDir)
	if err != nil {
		return nil, err
	}
	newDocs, err := listDocuments(newDir)
	if err != nil {
		return nil, err
	}
	var both []string
	for rel := range oldDocs {
		if newDocs[rel] {
			both = append(both, rel)
		}
	}
	sort.Strings(both)
	return both, nil
}

func listDocuments(dir string) (map[string]bool, error) {
	docs := map[string]bool{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !documentExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		docs[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func outputPath(outDir, rel string) string {
	return filepath.Join(outDir, strings.TrimSuffix(filepath.FromSlash(rel), filepath.Ext(rel))+".html")
}

// diffDir diffs each pair concurrently, at most jobs at a time. It stops at the first error.
func diffDir(rels []string, oldDir, newDir, outDir string, cfg Config, jobs int) error {
	var g errgroup.Group
	g.SetLimit(jobs)
	opts := cfg.diffOptions()
	for _, rel := range rels {
		g.Go(func() error {
			simplelogger.Log("cli: dir: diffing %s", rel)
			return diffFile(filepath.Join(oldDir, filepath.FromSlash(rel)), filepath.Join(newDir, filepath.FromSlash(rel)), outputPath(outDir, rel), opts)
		})
	}
	return g.Wait()
}

func diffFile(oldPath, newPath, outPath string, opts *visualdiff.Options) (err error) {
	oldRoot, err := docload.Load(oldPath)
	if err != nil {
		return err
	}
	newRoot, err := docload.Load(newPath)
	if err != nil {
		return err
	}
	frag := visualdiff.Diff(oldRoot, newRoot, opts)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return render.HTML(f, frag)
}
