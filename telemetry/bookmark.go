package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the kind of notable event.
type BookmarkType string

const (
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkRecovery        BookmarkType = "recovery"
	BookmarkAttackSurge     BookmarkType = "attack_surge"
	BookmarkLineageBurst    BookmarkType = "lineage_burst"
	BookmarkStable          BookmarkType = "stable_population"
	BookmarkExtinction      BookmarkType = "extinction"
)

// Bookmark marks a window worth looking at.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs a bookmark event.
func LogBookmark(b Bookmark) {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

const (
	stableWindows = 5
	stableCV      = 0.1
)

// BookmarkDetector watches consecutive windows for crashes, recoveries,
// bursts of aggression or diversity, and sustained stability.
type BookmarkDetector struct {
	history []WindowStats
	size    int
	next    int
	count   int

	peak        int
	trough      int
	stableCount int
	extinct     bool
}

// NewBookmarkDetector keeps historySize windows of context. Non-positive
// sizes default to 10.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize <= 0 {
		historySize = 10
	}
	return &BookmarkDetector{
		history: make([]WindowStats, historySize),
		size:    historySize,
	}
}

// Check compares a finished window against recent history and returns the
// bookmarks it triggers. The window is then added to the history.
func (bd *BookmarkDetector) Check(ws WindowStats) []Bookmark {
	var out []Bookmark

	if ws.Population == 0 {
		if !bd.extinct {
			bd.extinct = true
			out = append(out, Bookmark{
				Type:        BookmarkExtinction,
				Tick:        ws.WindowEndTick,
				Description: fmt.Sprintf("Population extinct (peak %d)", bd.peak),
			})
		}
		bd.record(ws)
		return out
	}

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkCrash,
		bd.checkRecovery,
		bd.checkAttackSurge,
		bd.checkLineageBurst,
		bd.checkStable,
	} {
		if b := check(ws); b != nil {
			out = append(out, *b)
		}
	}

	bd.record(ws)
	return out
}

func (bd *BookmarkDetector) record(ws WindowStats) {
	bd.history[bd.next] = ws
	bd.next = (bd.next + 1) % bd.size
	if bd.count < bd.size {
		bd.count++
	}

	if ws.Population > bd.peak {
		bd.peak = ws.Population
	}
	if bd.trough == 0 || ws.Population < bd.trough {
		bd.trough = ws.Population
	}
}

// recent returns the history oldest first.
func (bd *BookmarkDetector) recent() []WindowStats {
	out := make([]WindowStats, bd.count)
	start := (bd.next - bd.count + bd.size) % bd.size
	for i := range out {
		out[i] = bd.history[(start+i)%bd.size]
	}
	return out
}

func (bd *BookmarkDetector) checkCrash(ws WindowStats) *Bookmark {
	if bd.peak == 0 {
		return nil
	}
	drop := 1 - float64(ws.Population)/float64(bd.peak)
	if drop <= 0.5 || ws.Population > bd.peak-10 {
		return nil
	}

	oldPeak := bd.peak
	bd.peak = ws.Population
	bd.trough = ws.Population
	return &Bookmark{
		Type:        BookmarkPopulationCrash,
		Tick:        ws.WindowEndTick,
		Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, ws.Population),
	}
}

func (bd *BookmarkDetector) checkRecovery(ws WindowStats) *Bookmark {
	if bd.trough == 0 || bd.trough > 10 {
		return nil
	}
	if ws.Population < bd.trough*3 || ws.Population < 20 {
		return nil
	}

	oldTrough := bd.trough
	bd.trough = ws.Population
	return &Bookmark{
		Type:        BookmarkRecovery,
		Tick:        ws.WindowEndTick,
		Description: fmt.Sprintf("Population recovered from %d to %d", oldTrough, ws.Population),
	}
}

func (bd *BookmarkDetector) checkAttackSurge(ws WindowStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}

	hits := make([]float64, len(history))
	for i, h := range history {
		hits[i] = float64(h.AttackHits)
	}
	avg := stat.Mean(hits, nil)
	if avg == 0 {
		return nil
	}

	if float64(ws.AttackHits) > avg*2 && ws.AttackHits >= 10 {
		return &Bookmark{
			Type:        BookmarkAttackSurge,
			Tick:        ws.WindowEndTick,
			Description: fmt.Sprintf("Attack hits %d are %.1fx average (%.1f)", ws.AttackHits, float64(ws.AttackHits)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkLineageBurst(ws WindowStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}

	lineages := make([]float64, len(history))
	for i, h := range history {
		lineages[i] = float64(h.Lineages)
	}
	avg := stat.Mean(lineages, nil)

	if float64(ws.Lineages) > avg*2 && ws.Lineages >= 5 {
		return &Bookmark{
			Type:        BookmarkLineageBurst,
			Tick:        ws.WindowEndTick,
			Description: fmt.Sprintf("%d lineages, %.1fx recent average", ws.Lineages, float64(ws.Lineages)/avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStable(ws WindowStats) *Bookmark {
	history := bd.recent()
	if ws.Population < 10 || len(history) < stableWindows-1 {
		bd.stableCount = 0
		return nil
	}

	pops := make([]float64, 0, stableWindows)
	for _, h := range history[len(history)-(stableWindows-1):] {
		pops = append(pops, float64(h.Population))
	}
	pops = append(pops, float64(ws.Population))

	mean, std := stat.MeanStdDev(pops, nil)
	if mean > 0 && std/mean < stableCV {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	// Fire once per stable stretch
	if bd.stableCount != 1 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStable,
		Tick:        ws.WindowEndTick,
		Description: fmt.Sprintf("Population steady around %.0f over %d windows", mean, stableWindows),
	}
}
