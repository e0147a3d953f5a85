// Package vision implements the Vision Enricher: it scores how well a Task
// aligns with the VisionObjective hierarchy and surfaces a small set of
// strategic insights (at-risk objectives, new alignment opportunities).
package vision

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// Weights for the five alignment factors.
const (
	weightKeyword    = 0.30
	weightTagBranch  = 0.25
	weightPriority   = 0.15
	weightProximity  = 0.20
	weightStatus     = 0.10
)

// DefaultTopN is the default cap on objectives attached to a response.
const DefaultTopN = 5

// HierarchyIndex is a lookup of VisionObjectives by id, used to walk parent
// chains for tag-overlap and hierarchical-proximity scoring.
type HierarchyIndex map[string]*domain.VisionObjective

// NewHierarchyIndex builds an index from a flat list of objectives.
func NewHierarchyIndex(objectives []*domain.VisionObjective) HierarchyIndex {
	idx := make(HierarchyIndex, len(objectives))
	for _, o := range objectives {
		idx[o.ID] = o
	}
	return idx
}

// ancestorChain returns id and every ancestor above it, root last... no,
// root-to-node order is not needed here — this returns node-to-root order,
// starting with id itself.
func (idx HierarchyIndex) ancestorChain(id string) []string {
	var chain []string
	for id != "" {
		chain = append(chain, id)
		obj, ok := idx[id]
		if !ok {
			break
		}
		id = obj.ParentID
	}
	return chain
}

// isAncestor reports whether ancestorID sits above descendantID in the tree
// (or is the same node).
func (idx HierarchyIndex) isAncestor(ancestorID, descendantID string) bool {
	for _, id := range idx.ancestorChain(descendantID) {
		if id == ancestorID {
			return true
		}
	}
	return false
}

// distance returns the number of tree edges between a and b via their
// lowest common ancestor. ok is false if they are not in the same tree.
func (idx HierarchyIndex) distance(a, b string) (int, bool) {
	chainA := idx.ancestorChain(a)
	chainB := idx.ancestorChain(b)
	depthA := make(map[string]int, len(chainA))
	for i, id := range chainA {
		depthA[id] = i
	}
	for depthB, id := range chainB {
		if da, ok := depthA[id]; ok {
			return da + depthB, true
		}
	}
	return 0, false
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "for": true, "in": true, "on": true, "with": true, "is": true,
	"it": true, "this": true, "that": true, "be": true, "as": true, "at": true,
}

// tokenize lowercases, splits on non-alphanumeric runes, and drops stopwords
// and empty tokens, returning a de-duplicated set.
func tokenize(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "" || stopwords[f] {
			continue
		}
		set[f] = true
	}
	return set
}

// jaccard computes |A∩B| / |A∪B|, 0 when both sets are empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// keywordOverlap is the "Keyword overlap" factor: Jaccard between
// normalised task title+description tokens and objective title+metric names.
func keywordOverlap(task *domain.Task, obj *domain.VisionObjective) float64 {
	taskTokens := tokenize(task.Title + " " + task.Description)
	objText := obj.Title
	for _, m := range obj.Metrics {
		objText += " " + m.Name
	}
	objTokens := tokenize(objText)
	return clamp01(jaccard(taskTokens, objTokens))
}

// tagBranchOverlap is the "Tag/branch overlap" factor: whether the
// Task's branch sits under the Objective's project (i.e. the objective is
// an ancestor of the task's branch node, or is the branch node itself).
func tagBranchOverlap(idx HierarchyIndex, branchID string, obj *domain.VisionObjective) float64 {
	if branchID == "" {
		return 0
	}
	if idx.isAncestor(obj.ID, branchID) {
		return 1
	}
	return 0
}

// priorityCompatibility is the "Priority compatibility" factor: higher
// Task priority on a higher-level objective scores higher.
func priorityCompatibility(task *domain.Task, obj *domain.VisionObjective) float64 {
	priorityNorm := float64(task.Priority.Rank()) / 5.0
	levelWeight := 1 - float64(levelDepth(obj.Level))/3.0
	return clamp01(priorityNorm * levelWeight)
}

func levelDepth(l domain.VisionLevel) int {
	switch l {
	case domain.LevelOrganization:
		return 0
	case domain.LevelProject:
		return 1
	case domain.LevelBranch:
		return 2
	default:
		return 3
	}
}

// hierarchicalProximity is the "Hierarchical proximity" factor:
// 1/(1+distance) in the objective tree from the Task's branch.
func hierarchicalProximity(idx HierarchyIndex, branchID string, obj *domain.VisionObjective) float64 {
	if branchID == "" {
		return 0
	}
	dist, ok := idx.distance(branchID, obj.ID)
	if !ok {
		return 0
	}
	return clamp01(1.0 / float64(1+dist))
}

// statusCompatibility is the "Status compatibility" factor.
func statusCompatibility(task *domain.Task, obj *domain.VisionObjective) float64 {
	if task.Status.IsTerminal() || obj.Status == domain.VisionAchieved || obj.Status == domain.VisionAbandoned {
		return 0
	}
	if task.Status == domain.StatusInProgress && obj.Status == domain.VisionActive {
		return 1
	}
	return 0.5
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// classifyContribution applies the contribution-classification rule ladder.
func classifyContribution(task *domain.Task, keyword, tagBranch, priority, proximity, status float64) domain.Contribution {
	if isMaintenanceTask(task) {
		return domain.ContributionMaintenance
	}
	allHigh := keyword >= 0.5 && tagBranch >= 0.5 && priority >= 0.5 && proximity >= 0.5 && status >= 0.5
	if allHigh && task.Priority.Rank() >= domain.PriorityHigh.Rank() {
		return domain.ContributionDirect
	}
	if proximity >= 0.5 && keyword < 0.25 {
		return domain.ContributionSupporting
	}
	if keyword >= 0.5 && proximity < 0.25 {
		return domain.ContributionExploratory
	}
	return domain.ContributionEnabling
}

func isMaintenanceTask(task *domain.Task) bool {
	return strings.Contains(strings.ToLower(task.Title), "maintenance") ||
		strings.Contains(strings.ToLower(task.Description), "maintenance")
}

// Score computes the (Task, Objective) Alignment per the weighted formula above.
func Score(idx HierarchyIndex, task *domain.Task, obj *domain.VisionObjective) domain.Alignment {
	keyword := keywordOverlap(task, obj)
	tagBranch := tagBranchOverlap(idx, task.BranchID, obj)
	priority := priorityCompatibility(task, obj)
	proximity := hierarchicalProximity(idx, task.BranchID, obj)
	status := statusCompatibility(task, obj)

	score := clamp01(weightKeyword*keyword + weightTagBranch*tagBranch +
		weightPriority*priority + weightProximity*proximity + weightStatus*status)

	nonZero := 0
	for _, f := range []float64{keyword, tagBranch, priority, proximity, status} {
		if f > 0 {
			nonZero++
		}
	}
	confidence := float64(nonZero) / 5.0

	return domain.Alignment{
		ObjectiveID:  obj.ID,
		Score:        score,
		Confidence:   confidence,
		Contribution: classifyContribution(task, keyword, tagBranch, priority, proximity, status),
	}
}

// Rank scores task against every objective in idx and returns the topN
// ranked by score × confidence, descending. topN <= 0 uses DefaultTopN.
func Rank(idx HierarchyIndex, task *domain.Task, objectives []*domain.VisionObjective, topN int) []domain.Alignment {
	if topN <= 0 {
		topN = DefaultTopN
	}
	alignments := make([]domain.Alignment, 0, len(objectives))
	for _, obj := range objectives {
		alignments = append(alignments, Score(idx, task, obj))
	}
	sort.SliceStable(alignments, func(i, j int) bool {
		return alignments[i].Score*alignments[i].Confidence > alignments[j].Score*alignments[j].Confidence
	})
	if len(alignments) > topN {
		alignments = alignments[:topN]
	}
	return alignments
}

// InsightKind tags a strategic insight variant.
type InsightKind string

const (
	InsightAtRiskObjective        InsightKind = "at_risk_objective"
	InsightNewAlignmentOpportunity InsightKind = "new_alignment_opportunity"
)

// Insight is a single strategic observation surfaced alongside vision_context.
type Insight struct {
	Kind        InsightKind
	ObjectiveID string
	Message     string
}

// defaultDeadlineProximity and defaultMetricGapThreshold are the defaults used by
// DetectInsights when the caller does not override them via Options.
const (
	defaultDeadlineProximity = 14 * 24 * time.Hour
	defaultMetricGapThreshold = 0.4
)

// Options tunes DetectInsights' thresholds; zero values fall back to the
// package defaults.
type Options struct {
	DeadlineProximity  time.Duration
	MetricGapThreshold float64
	MinAssignments     int
}

func (o Options) withDefaults() Options {
	if o.DeadlineProximity == 0 {
		o.DeadlineProximity = defaultDeadlineProximity
	}
	if o.MetricGapThreshold == 0 {
		o.MetricGapThreshold = defaultMetricGapThreshold
	}
	if o.MinAssignments == 0 {
		o.MinAssignments = 1
	}
	return o
}

// DetectInsights runs the strategic-insight rule set over
// {deadline proximity, current/target metric gap, assignment volume}.
// assignmentCounts maps objective id to the number of tasks currently
// assigned toward it (assignment volume).
func DetectInsights(now time.Time, objectives []*domain.VisionObjective, assignmentCounts map[string]int, opts Options) []Insight {
	opts = opts.withDefaults()
	var insights []Insight

	for _, obj := range objectives {
		if obj.Status != domain.VisionActive {
			continue
		}

		atRisk := false
		var reasons []string
		if obj.Deadline != nil && obj.Deadline.Sub(now) > 0 && obj.Deadline.Sub(now) <= opts.DeadlineProximity {
			atRisk = true
			reasons = append(reasons, "deadline within "+obj.Deadline.Sub(now).Round(time.Hour).String())
		}
		maxGap := 0.0
		for _, m := range obj.Metrics {
			if g := m.Gap(); g > maxGap {
				maxGap = g
			}
		}
		if maxGap >= opts.MetricGapThreshold {
			atRisk = true
			reasons = append(reasons, "metric gap")
		}
		if atRisk {
			insights = append(insights, Insight{
				Kind:        InsightAtRiskObjective,
				ObjectiveID: obj.ID,
				Message:     "objective \"" + obj.Title + "\" is at risk: " + strings.Join(reasons, ", "),
			})
		}

		if assignmentCounts[obj.ID] == 0 && maxGap > 0 {
			insights = append(insights, Insight{
				Kind:        InsightNewAlignmentOpportunity,
				ObjectiveID: obj.ID,
				Message:     "objective \"" + obj.Title + "\" has no assigned work but an open metric gap",
			})
		}
	}
	return insights
}
