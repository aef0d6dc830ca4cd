package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/atomicstack/popup-launcher/internal/action"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// DmenuName is the provider used for scripted selection.
	DmenuName = "dmenu"
	// DmenuSelect is the action that emits the chosen line.
	DmenuSelect = "select"
)

// Dmenu serves lines read from stdin or received over IPC and emits the chosen one.
type Dmenu struct {
	descriptors []action.Descriptor

	mu        sync.Mutex
	lines     []string
	emit      func(string)
	refreshed chan struct{}
}

// NewDmenu creates the dmenu provider. When descriptors is empty a single
// default "select" action bound to enter is used.
func NewDmenu(descriptors []action.Descriptor) *Dmenu {
	if len(descriptors) == 0 {
		yes := true
		descriptors = []action.Descriptor{{Action: DmenuSelect, Default: &yes, Bind: "enter", Label: "select"}}
	}
	return &Dmenu{
		descriptors: descriptors,
		refreshed:   make(chan struct{}, 1),
	}
}

func (d *Dmenu) Name() string { return DmenuName }

// SetEmitter installs the function that delivers the selected line.
func (d *Dmenu) SetEmitter(emit func(string)) {
	d.mu.Lock()
	d.emit = emit
	d.mu.Unlock()
}

// SetLines replaces the served lines and announces a refresh. Safe to call
// from any goroutine.
func (d *Dmenu) SetLines(lines []string) {
	d.mu.Lock()
	d.lines = append([]string(nil), lines...)
	d.mu.Unlock()
	select {
	case d.refreshed <- struct{}{}:
	default:
	}
}

// Lines returns a copy of the served lines.
func (d *Dmenu) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

// ReadLines loads every non-empty line from r.
func (d *Dmenu) ReadLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines := make([]string, 0, 64)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dmenu input: %w", err)
	}
	d.SetLines(lines)
	return nil
}

func (d *Dmenu) Refreshed() <-chan struct{} {
	return d.refreshed
}

func (d *Dmenu) Query(ctx context.Context, q Query) ([]Item, error) {
	d.mu.Lock()
	lines := append([]string(nil), d.lines...)
	d.mu.Unlock()

	items := make([]Item, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score := DmenuScore(q.Text, line)
		items = append(items, Item{
			ID:         strconv.Itoa(i),
			Label:      line,
			Provider:   DmenuName,
			Actions:    []string{DmenuSelect},
			Score:      int(score),
			DmenuScore: score,
		})
	}
	if strings.TrimSpace(q.Text) != "" {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DmenuScore > items[j].DmenuScore
		})
	}
	return items, nil
}

func (d *Dmenu) Actions(ids []string) []action.Descriptor {
	return FilterDescriptors(d.descriptors, ids)
}

func (d *Dmenu) Activate(_ string, item *Item, _ string, desc action.Descriptor) error {
	if item == nil {
		return nil
	}
	if desc.Action != DmenuSelect {
		return fmt.Errorf("dmenu: unsupported action %q", desc.Action)
	}
	d.mu.Lock()
	emit := d.emit
	d.mu.Unlock()
	if emit == nil {
		return fmt.Errorf("dmenu: no emitter configured")
	}
	emit(item.Label)
	return nil
}

// DmenuQueryLen is the rune length of query as DmenuScore sees it, with
// surrounding whitespace ignored.
func DmenuQueryLen(query string) int {
	return utf8.RuneCountInString(strings.TrimSpace(query))
}

// DmenuScore rates how well line matches query. Non-matching lines score 0;
// a tight fuzzy match scores about 30 per query rune, with bonuses for
// prefix and substring matches.
func DmenuScore(query, line string) uint32 {
	q := strings.TrimSpace(query)
	n := DmenuQueryLen(q)
	if n == 0 {
		return 0
	}
	dist := fuzzy.RankMatchNormalizedFold(q, line)
	if dist < 0 {
		return 0
	}
	base := 30 * n
	if dist > base {
		dist = base
	}
	score := base - dist
	lowerLine := strings.ToLower(line)
	lowerQuery := strings.ToLower(q)
	switch {
	case strings.HasPrefix(lowerLine, lowerQuery):
		score += 10 * n
	case strings.Contains(lowerLine, lowerQuery):
		score += 5 * n
	}
	return uint32(score)
}
