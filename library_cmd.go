package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/editor"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/lawflow/lawflow/internal/library"
)

var (
	listCategory string
	listSearch   string

	articleNumber   string
	articleCategory string
	articleContent  string

	assumeYes      bool
	importCategory string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the articles in the library",
	Example: paragraph("lawflow list\nlawflow list --category รัฐธรรมนูญ\nlawflow list --search 276"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withLibrary(func(lib *library.Library) error {
			category := library.All
			if listCategory != "" {
				if !lib.HasCategory(listCategory) {
					return fmt.Errorf("%w: %q", library.ErrCategoryNotFound, listCategory)
				}
				category = listCategory
			}
			printArticles(cmd.OutOrStdout(), lib.Search(listSearch, category), int(width)) //nolint:gosec
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add an article",
	Long:    paragraph(fmt.Sprintf("\n%s an article. The content is read from stdin when --content is not given.", keyword("Add"))),
	Example: paragraph("lawflow add --number 'มาตรา 288' --category ประมวลกฎหมายอาญา --content 'ผู้ใดฆ่าผู้อื่น ...'\ncat 288.txt | lawflow add --number 'มาตรา 288'"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		content := articleContent
		if content == "" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("unable to read from stdin: %w", err)
			}
			content = string(b)
		}
		return withLibrary(func(lib *library.Library) error {
			a, err := lib.Add(articleNumber, articleCategory, content)
			if err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintf(cmd.OutOrStdout(), "เพิ่มมาตราเรียบร้อยแล้ว! %s\n", subtle(fmt.Sprintf("#%d %s", a.ID, a.Number)))
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:     "edit ID",
	Short:   "Edit an article",
	Long:    paragraph(fmt.Sprintf("\n%s an article. Without flags the article is opened in EDITOR: the first line is the number, the rest is the content.", keyword("Edit"))),
	Example: paragraph("lawflow edit 2\nlawflow edit 2 --category อื่นๆ"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withLibrary(func(lib *library.Library) error {
			a, err := lib.Get(id)
			if err != nil {
				return err //nolint:wrapcheck
			}

			number, category, content := a.Number, a.Category, a.Content
			flags := cmd.Flags()
			if flags.Changed("number") || flags.Changed("category") || flags.Changed("content") {
				if flags.Changed("number") {
					number = articleNumber
				}
				if flags.Changed("category") {
					category = articleCategory
				}
				if flags.Changed("content") {
					content = articleContent
				}
			} else if number, content, err = editInEditor(a); err != nil {
				return err
			}

			if _, err := lib.Update(id, number, category, content); err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintln(cmd.OutOrStdout(), "แก้ไขมาตราเรียบร้อยแล้ว!")
			return nil
		})
	},
}

// editInEditor opens a in EDITOR and returns what was saved.
func editInEditor(a library.Article) (number, content string, err error) {
	f, err := os.CreateTemp("", "lawflow-*.txt")
	if err != nil {
		return "", "", fmt.Errorf("unable to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path) //nolint:errcheck

	_, werr := fmt.Fprintf(f, "%s\n\n%s\n", a.Number, a.Content)
	if err := errors.Join(werr, f.Close()); err != nil {
		return "", "", fmt.Errorf("unable to write temp file: %w", err)
	}

	c, err := editor.Cmd("LawFlow", path)
	if err != nil {
		return "", "", fmt.Errorf("unable to open editor: %w", err)
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return "", "", fmt.Errorf("unable to run command: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("unable to read temp file: %w", err)
	}
	number, content = library.ParseText(b)
	return number, content, nil
}

var rmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete an article",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withLibrary(func(lib *library.Library) error {
			a, err := lib.Get(id)
			if err != nil {
				return err //nolint:wrapcheck
			}
			if !confirm(cmd, library.DeleteArticlePrompt(a)) {
				return nil
			}
			if err := lib.Delete(id); err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ลบ %s เรียบร้อยแล้ว\n", a.Number)
			return nil
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List categories with their article counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withLibrary(func(lib *library.Library) error {
			printCategories(cmd.OutOrStdout(), lib.Categories(), lib.Counts())
			return nil
		})
	},
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if _, err := lib.AddCategory(args[0]); err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintln(cmd.OutOrStdout(), "เพิ่มหมวดหมู่เรียบร้อยแล้ว!")
			return nil
		})
	},
}

var categoriesRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete a category, moving its articles to " + library.OtherCategory,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withLibrary(func(lib *library.Library) error {
			if !lib.HasCategory(name) {
				return fmt.Errorf("%w: %q", library.ErrCategoryNotFound, name)
			}
			if !confirm(cmd, library.DeleteCategoryPrompt(name, lib.Count(name))) {
				return nil
			}
			moved, err := lib.DeleteCategory(name)
			if err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ลบหมวดหมู่ \"%s\" แล้ว (ย้าย %d มาตรา)\n", name, moved)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:     "import PATH",
	Short:   "Import articles from markdown, text or a YAML export",
	Long:    paragraph(fmt.Sprintf("\n%s articles. A directory is searched for markdown and text files; a .yml or .yaml file is read as a lawflow export. The first heading or line of each file becomes the article number.", keyword("Import"))),
	Example: paragraph("lawflow import ~/notes/criminal --category ประมวลกฎหมายอาญา\nlawflow import backup.yml"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := expandPath(args[0])
		return withLibrary(func(lib *library.Library) error {
			n, err := importPath(lib, path, importCategory)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "นำเข้า %d มาตรา\n", n)
			return nil
		})
	},
}

func importPath(lib *library.Library, path, category string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("unable to stat %s: %w", path, err)
	}
	if info.IsDir() {
		added, err := lib.ImportDir(path, category)
		return len(added), err //nolint:wrapcheck
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("unable to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		return lib.ReadYAML(f) //nolint:wrapcheck
	default:
		if _, err := lib.ImportFile(path, category); err != nil {
			return 0, err //nolint:wrapcheck
		}
		return 1, nil
	}
}

var exportCmd = &cobra.Command{
	Use:     "export [FILE]",
	Short:   "Export the library as YAML",
	Example: paragraph("lawflow export > backup.yml\nlawflow export backup.yml"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			if len(args) == 0 {
				return lib.WriteYAML(cmd.OutOrStdout()) //nolint:wrapcheck
			}
			f, err := os.Create(expandPath(args[0]))
			if err != nil {
				return fmt.Errorf("unable to create file: %w", err)
			}
			if err := lib.WriteYAML(f); err != nil {
				_ = f.Close()
				return err //nolint:wrapcheck
			}
			return f.Close() //nolint:wrapcheck
		})
	},
}

// confirm asks prompt on the command's input unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ใช่":
		return true
	}
	return false
}

func printArticles(w io.Writer, articles []library.Article, width int) {
	if len(articles) == 0 {
		fmt.Fprintln(w, subtle("ไม่มีมาตราในหมวดนี้"))
		return
	}
	if width <= 0 {
		width = 80
	}
	for _, a := range articles {
		head := fmt.Sprintf("%s %s %s", subtle(fmt.Sprintf("#%d", a.ID)), keyword(a.Number), subtle(library.ShortName(a.Category)))
		if !a.UpdatedAt.IsZero() {
			head += subtle(" • " + humanize.Time(a.UpdatedAt))
		}
		preview := runewidth.Truncate(strings.Join(strings.Fields(a.Content), " "), max(10, width-2), "…")
		fmt.Fprintf(w, "%s\n  %s\n", head, preview)
	}
}

func printCategories(w io.Writer, categories []string, counts map[string]int) {
	for _, c := range categories {
		label := c
		if short := library.ShortName(c); short != c {
			label += subtle(" (" + short + ")")
		}
		fmt.Fprintf(w, "%s %s\n", keyword(fmt.Sprintf("%3d", counts[c])), label)
	}
	fmt.Fprintf(w, "%s %s\n", keyword(fmt.Sprintf("%3d", counts[library.All])), subtle("ทั้งหมด"))
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only articles in this category")
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "fuzzy search number and content")

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVarP(&articleNumber, "number", "n", "", "article number, e.g. \"มาตรา 276\"")
		c.Flags().StringVarP(&articleCategory, "category", "c", "", "category (default "+library.OtherCategory+")")
		c.Flags().StringVar(&articleContent, "content", "", "article text")
	}
	_ = addCmd.MarkFlagRequired("number")

	rmCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "don't ask for confirmation")
	categoriesRmCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "don't ask for confirmation")
	categoriesCmd.AddCommand(categoriesAddCmd, categoriesRmCmd)

	importCmd.Flags().StringVarP(&importCategory, "category", "c", "", "category for imported files (default "+library.OtherCategory+")")
}
