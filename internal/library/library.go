// Package library keeps the collection of legal articles and their
// categories, persisted through a store.Store.
package library

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/lawflow/lawflow/internal/store"
)

var (
	// ErrInvalidArticle is returned when an article has no number or no
	// content.
	ErrInvalidArticle = errors.New("article number and content are required")
	// ErrArticleNotFound is returned for an unknown article id.
	ErrArticleNotFound = errors.New("article not found")
	// ErrInvalidCategory is returned for a blank category name.
	ErrInvalidCategory = errors.New("category name is required")
	// ErrDuplicateCategory is returned when adding a category that exists.
	ErrDuplicateCategory = errors.New("หมวดหมู่นี้มีอยู่แล้ว")
	// ErrCategoryNotFound is returned for an unknown category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProtectedCategory is returned when deleting OtherCategory, which
	// must exist to receive orphaned articles.
	ErrProtectedCategory = errors.New("category cannot be deleted")
	// ErrNotWatchable is returned by Watch when the store cannot report
	// external changes.
	ErrNotWatchable = errors.New("store does not support watching")
)

// Article is one legal article. Number is its label, such as "มาตรา 276".
type Article struct {
	ID        int       `yaml:"id"`
	Number    string    `yaml:"number"`
	Category  string    `yaml:"category"`
	Content   string    `yaml:"content"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// Library is safe for concurrent use. Every mutation is written through to
// the store before it returns.
type Library struct {
	mu         sync.RWMutex
	store      store.Store
	articles   map[int]Article
	nextID     int
	categories []string
	now        func() time.Time
}

// Open loads the library from s. Missing or unreadable values are replaced
// by the defaults and written back.
func Open(s store.Store) (*Library, error) {
	l := &Library{store: s, now: time.Now}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads every key from the store.
func (l *Library) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.loadCategories(); err != nil {
		return err
	}
	return l.loadArticles()
}

func (l *Library) loadCategories() error {
	raw, ok, err := l.store.Load(keyCategories)
	if ok && err == nil {
		var cats []string
		if err = yaml.Unmarshal([]byte(raw), &cats); err == nil {
			cats = cleanCategories(cats)
			if len(cats) > 0 {
				if !slices.Contains(cats, OtherCategory) {
					cats = append(cats, OtherCategory)
				}
				l.categories = cats
				return nil
			}
			err = errors.New("empty category list")
		}
	}
	if ok || err != nil {
		log.Warn("categories unreadable, restoring defaults", "error", err)
	}
	l.categories = slices.Clone(DefaultCategories)
	return l.saveCategories()
}

func (l *Library) loadArticles() error {
	raw, ok, err := l.store.Load(keyArticles)
	if ok && err == nil {
		var list []Article
		if err = yaml.Unmarshal([]byte(raw), &list); err == nil {
			l.articles = make(map[int]Article, len(list))
			for _, a := range list {
				if a.ID <= 0 {
					log.Warn("skipping stored article without id", "number", a.Number)
					continue
				}
				if _, dup := l.articles[a.ID]; dup {
					log.Warn("skipping duplicate article id", "id", a.ID)
					continue
				}
				l.articles[a.ID] = a
			}
			l.nextID = l.loadNextID()
			return nil
		}
	}
	if ok || err != nil {
		log.Warn("articles unreadable, restoring defaults", "error", err)
	}
	l.articles, l.nextID = defaultArticles()
	return l.saveArticles()
}

// loadNextID reads the persisted id counter, never returning an id that
// is already taken.
func (l *Library) loadNextID() int {
	maxID := 0
	for id := range l.articles {
		maxID = max(maxID, id)
	}
	raw, ok, err := l.store.Load(keyNextID)
	if err != nil || !ok {
		return maxID + 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid next id", "value", raw, "error", err)
		return maxID + 1
	}
	return max(n, maxID+1)
}

func (l *Library) saveCategories() error {
	data, err := yaml.Marshal(l.categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := l.store.Save(keyCategories, string(data)); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

func (l *Library) saveArticles() error {
	data, err := yaml.Marshal(sortedArticles(l.articles))
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}
	if err := l.store.Save(keyArticles, string(data)); err != nil {
		return fmt.Errorf("save articles: %w", err)
	}
	if err := l.store.Save(keyNextID, strconv.Itoa(l.nextID)); err != nil {
		return fmt.Errorf("save next id: %w", err)
	}
	return nil
}

// commitArticles saves the article map, restoring prev on failure.
func (l *Library) commitArticles(prev map[int]Article, prevNext int) error {
	if err := l.saveArticles(); err != nil {
		l.articles, l.nextID = prev, prevNext
		return err
	}
	return nil
}

// Articles returns every article ordered by id.
func (l *Library) Articles() []Article {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedArticles(l.articles)
}

// Len returns the number of articles.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.articles)
}

// Get returns the article with the given id.
func (l *Library) Get(id int) (Article, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.articles[id]
	if !ok {
		return Article{}, fmt.Errorf("%w: %d", ErrArticleNotFound, id)
	}
	return a, nil
}

// Add creates an article. An empty category files it under OtherCategory.
func (l *Library) Add(number, category, content string) (Article, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.validate(number, category, content)
	if err != nil {
		return Article{}, err
	}
	prev, prevNext := maps.Clone(l.articles), l.nextID

	a.ID = l.nextID
	a.CreatedAt = l.now()
	a.UpdatedAt = a.CreatedAt
	l.articles[a.ID] = a
	l.nextID++

	if err := l.commitArticles(prev, prevNext); err != nil {
		return Article{}, err
	}
	log.Debug("article added", "id", a.ID, "number", a.Number)
	return a, nil
}

// Update replaces the number, category and content of an article.
func (l *Library) Update(id int, number, category, content string) (Article, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.articles[id]
	if !ok {
		return Article{}, fmt.Errorf("%w: %d", ErrArticleNotFound, id)
	}
	a, err := l.validate(number, category, content)
	if err != nil {
		return Article{}, err
	}
	prev := maps.Clone(l.articles)

	a.ID = id
	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = l.now()
	l.articles[id] = a

	if err := l.commitArticles(prev, l.nextID); err != nil {
		return Article{}, err
	}
	log.Debug("article updated", "id", id)
	return a, nil
}

// Delete removes an article.
func (l *Library) Delete(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.articles[id]; !ok {
		return fmt.Errorf("%w: %d", ErrArticleNotFound, id)
	}
	prev := maps.Clone(l.articles)
	delete(l.articles, id)
	if err := l.commitArticles(prev, l.nextID); err != nil {
		return err
	}
	log.Debug("article deleted", "id", id)
	return nil
}

func (l *Library) validate(number, category, content string) (Article, error) {
	a := Article{
		Number:   normalize(number),
		Category: normalize(category),
		Content:  normalize(content),
	}
	if a.Number == "" || a.Content == "" {
		return Article{}, ErrInvalidArticle
	}
	if a.Category == "" {
		a.Category = OtherCategory
	}
	if !slices.Contains(l.categories, a.Category) {
		return Article{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, a.Category)
	}
	return a, nil
}

// Categories returns the category names in display order.
func (l *Library) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.categories)
}

// HasCategory reports whether name is a known category.
func (l *Library) HasCategory(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Contains(l.categories, normalize(name))
}

// AddCategory appends a category and returns its cleaned name.
func (l *Library) AddCategory(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	name = normalize(name)
	if name == "" {
		return "", ErrInvalidCategory
	}
	if slices.Contains(l.categories, name) || name == All {
		return "", ErrDuplicateCategory
	}
	l.categories = append(l.categories, name)
	if err := l.saveCategories(); err != nil {
		l.categories = l.categories[:len(l.categories)-1]
		return "", err
	}
	log.Debug("category added", "name", name)
	return name, nil
}

// DeleteCategory removes a category and moves its articles to
// OtherCategory. It returns the number of articles moved.
func (l *Library) DeleteCategory(name string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	name = normalize(name)
	i := slices.Index(l.categories, name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	if name == OtherCategory {
		return 0, ErrProtectedCategory
	}

	moved := 0
	prev := maps.Clone(l.articles)
	for id, a := range l.articles {
		if a.Category == name {
			a.Category = OtherCategory
			l.articles[id] = a
			moved++
		}
	}
	if moved > 0 {
		if err := l.commitArticles(prev, l.nextID); err != nil {
			return 0, err
		}
	}

	prevCats := slices.Clone(l.categories)
	l.categories = slices.Delete(l.categories, i, i+1)
	if err := l.saveCategories(); err != nil {
		l.categories = prevCats
		if moved > 0 {
			l.articles = prev
			if rerr := l.saveArticles(); rerr != nil {
				log.Warn("unable to restore articles", "error", rerr)
			}
		}
		return 0, err
	}
	log.Debug("category deleted", "name", name, "moved", moved)
	return moved, nil
}

// Count returns the number of articles in category, or all of them for
// All.
func (l *Library) Count(category string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if category == All {
		return len(l.articles)
	}
	n := 0
	for _, a := range l.articles {
		if a.Category == category {
			n++
		}
	}
	return n
}

// Counts returns the article count per category, including All and any
// category an article names that is not in the list.
func (l *Library) Counts() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[string]int, len(l.categories)+1)
	for _, c := range l.categories {
		counts[c] = 0
	}
	counts[All] = len(l.articles)
	for _, a := range l.articles {
		counts[a.Category]++
	}
	return counts
}

// Filter returns the articles in category ordered by id. All returns
// every article.
func (l *Library) Filter(category string) []Article {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter(category)
}

func (l *Library) filter(category string) []Article {
	all := sortedArticles(l.articles)
	if category == All || category == "" {
		return all
	}
	return slices.DeleteFunc(all, func(a Article) bool {
		return a.Category != category
	})
}

// Watch reloads the library whenever another process changes the store
// and then calls onChange. It blocks until ctx is done.
func (l *Library) Watch(ctx context.Context, onChange func()) error {
	w, ok := l.store.(store.Watcher)
	if !ok {
		return ErrNotWatchable
	}
	return w.Watch(ctx, func(key string) {
		log.Debug("library changed on disk", "key", key)
		if err := l.Reload(); err != nil {
			log.Error("error reloading library", "error", err)
			return
		}
		if onChange != nil {
			onChange()
		}
	})
}

// DeleteArticlePrompt is the confirmation shown before deleting a.
func DeleteArticlePrompt(a Article) string {
	return fmt.Sprintf("ต้องการลบ \"%s\" ใช่หรือไม่?", a.Number)
}

// DeleteCategoryPrompt is the confirmation shown before deleting a
// category holding count articles.
func DeleteCategoryPrompt(name string, count int) string {
	if count == 0 {
		return fmt.Sprintf("ต้องการลบหมวดหมู่ \"%s\" หรือไม่?", name)
	}
	return fmt.Sprintf("หมวดหมู่ \"%s\" มีมาตรา %d รายการ\n\nต้องการลบหมวดหมู่นี้หรือไม่? (มาตราทั้งหมดจะถูกย้ายไปหมวด \"%s\")",
		name, count, OtherCategory)
}

func sortedArticles(m map[int]Article) []Article {
	list := make([]Article, 0, len(m))
	for _, a := range m {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func cleanCategories(cats []string) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		c = normalize(c)
		if c == "" || c == All || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// lineEndings turns CRLF and lone CR into LF, so paragraph breaks are
// always blank lines of "\n".
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalize trims s, converts line endings to LF and puts it in NFC so that
// equal Thai text typed with different mark orderings compares equal.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(lineEndings.Replace(s)))
}
