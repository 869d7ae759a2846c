package constraint

import (
	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

// Constraint is a scoring rule evaluable on its own over any set of lessons
type Constraint interface {
	Name() string
	// Weight is the signed impact of one match: negative for penalties, positive for rewards
	Weight() score.HardSoftScore
	// Score evaluates the constraint from scratch
	Score(lessons []*model.Lesson) score.HardSoftScore
	// Matches lists every tuple of lessons the constraint fires on
	Matches(lessons []*model.Lesson) []Match

	newTracker(lessons []*model.Lesson) tracker
}

// Checker is implemented by constraints that need to validate the problem before solving
type Checker interface {
	Check(lessons []*model.Lesson) error
}

type Match struct {
	Lessons []*model.Lesson
	Impact  score.HardSoftScore
}

// tracker maintains a constraint's contribution incrementally. retract must be called before a
// lesson's planning variables change and insert afterwards; both return the score delta they caused.
type tracker interface {
	retract(lesson int) score.HardSoftScore
	insert(lesson int) score.HardSoftScore
}

//** Unary constraints

type unaryConstraint struct {
	name   string
	weight score.HardSoftScore
	match  func(lesson *model.Lesson) int64
}

func (c *unaryConstraint) Name() string                { return c.name }
func (c *unaryConstraint) Weight() score.HardSoftScore { return c.weight }

func (c *unaryConstraint) Score(lessons []*model.Lesson) score.HardSoftScore {
	var total int64
	for _, lesson := range lessons {
		total += c.match(lesson)
	}
	return c.weight.Multiply(total)
}

func (c *unaryConstraint) Matches(lessons []*model.Lesson) []Match {
	matches := make([]Match, 0)
	for _, lesson := range lessons {
		if weight := c.match(lesson); weight != 0 {
			matches = append(matches, Match{Lessons: []*model.Lesson{lesson}, Impact: c.weight.Multiply(weight)})
		}
	}
	return matches
}

func (c *unaryConstraint) newTracker(lessons []*model.Lesson) tracker {
	return &unaryTracker{constraint: c, lessons: lessons}
}

type unaryTracker struct {
	constraint *unaryConstraint
	lessons    []*model.Lesson
}

func (t *unaryTracker) retract(lesson int) score.HardSoftScore {
	return t.constraint.weight.Multiply(-t.constraint.match(t.lessons[lesson]))
}

func (t *unaryTracker) insert(lesson int) score.HardSoftScore {
	return t.constraint.weight.Multiply(t.constraint.match(t.lessons[lesson]))
}

//** Pair constraints

// pairConstraint fires on unique unordered pairs of lessons sharing the same join key.
// Lessons for which key reports false never take part in a pair.
type pairConstraint[K comparable] struct {
	name   string
	weight score.HardSoftScore
	key    func(lesson *model.Lesson) (K, bool)
	match  func(a, b *model.Lesson) int64
}

func (c *pairConstraint[K]) Name() string                { return c.name }
func (c *pairConstraint[K]) Weight() score.HardSoftScore { return c.weight }

func (c *pairConstraint[K]) Score(lessons []*model.Lesson) score.HardSoftScore {
	var total int64
	c.forEachUniquePair(lessons, func(a, b *model.Lesson, weight int64) {
		total += weight
	})
	return c.weight.Multiply(total)
}

func (c *pairConstraint[K]) Matches(lessons []*model.Lesson) []Match {
	matches := make([]Match, 0)
	c.forEachUniquePair(lessons, func(a, b *model.Lesson, weight int64) {
		matches = append(matches, Match{Lessons: []*model.Lesson{a, b}, Impact: c.weight.Multiply(weight)})
	})
	return matches
}

func (c *pairConstraint[K]) forEachUniquePair(lessons []*model.Lesson, consume func(a, b *model.Lesson, weight int64)) {
	// Bucket lessons by join key so only lessons sharing a key are compared
	buckets := make(map[K][]*model.Lesson)
	order := make([]K, 0)
	for _, lesson := range lessons {
		key, ok := c.key(lesson)
		if !ok {
			continue
		}
		if _, exists := buckets[key]; !exists {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], lesson)
	}

	for _, key := range order {
		bucket := buckets[key]
		for i := range len(bucket) - 1 {
			for j := i + 1; j < len(bucket); j++ {
				if weight := c.match(bucket[i], bucket[j]); weight != 0 {
					consume(bucket[i], bucket[j], weight)
				}
			}
		}
	}
}

func (c *pairConstraint[K]) newTracker(lessons []*model.Lesson) tracker {
	return &pairTracker[K]{
		constraint: c,
		lessons:    lessons,
		buckets:    make(map[K]map[int]struct{}),
		keys:       make([]K, len(lessons)),
		joined:     make([]bool, len(lessons)),
	}
}

type pairTracker[K comparable] struct {
	constraint *pairConstraint[K]
	lessons    []*model.Lesson
	buckets    map[K]map[int]struct{}
	keys       []K
	joined     []bool
}

func (t *pairTracker[K]) retract(lesson int) score.HardSoftScore {
	if !t.joined[lesson] {
		return score.Zero
	}
	key := t.keys[lesson]
	bucket := t.buckets[key]
	delete(bucket, lesson)
	if len(bucket) == 0 {
		delete(t.buckets, key)
	}
	t.joined[lesson] = false

	return t.constraint.weight.Multiply(-t.sumWith(lesson, bucket))
}

func (t *pairTracker[K]) insert(lesson int) score.HardSoftScore {
	key, ok := t.constraint.key(t.lessons[lesson])
	if !ok {
		return score.Zero
	}
	bucket, exists := t.buckets[key]
	if !exists {
		bucket = make(map[int]struct{})
		t.buckets[key] = bucket
	}
	total := t.sumWith(lesson, bucket)
	bucket[lesson] = struct{}{}
	t.keys[lesson], t.joined[lesson] = key, true

	return t.constraint.weight.Multiply(total)
}

// sumWith adds the match weights of lesson paired with every other lesson in bucket
func (t *pairTracker[K]) sumWith(lesson int, bucket map[int]struct{}) int64 {
	var total int64
	for other := range bucket {
		if other != lesson {
			total += t.constraint.match(t.lessons[lesson], t.lessons[other])
		}
	}
	return total
}

//** Group constraints

// groupConstraint sums a value over every lesson sharing a group key and fires once per group
// whose total is penalized
type groupConstraint[K comparable] struct {
	name   string
	weight score.HardSoftScore
	key    func(lesson *model.Lesson) (K, bool)
	value  func(lesson *model.Lesson) int64
	match  func(key K, total int64) int64
}

func (c *groupConstraint[K]) Name() string                { return c.name }
func (c *groupConstraint[K]) Weight() score.HardSoftScore { return c.weight }

func (c *groupConstraint[K]) Score(lessons []*model.Lesson) score.HardSoftScore {
	var total int64
	_, groups := c.groups(lessons)
	for key, members := range groups {
		total += c.match(key, c.sum(members))
	}
	return c.weight.Multiply(total)
}

func (c *groupConstraint[K]) Matches(lessons []*model.Lesson) []Match {
	order, groups := c.groups(lessons)
	matches := make([]Match, 0)
	for _, key := range order {
		members := groups[key]
		if weight := c.match(key, c.sum(members)); weight != 0 {
			matches = append(matches, Match{Lessons: members, Impact: c.weight.Multiply(weight)})
		}
	}
	return matches
}

func (c *groupConstraint[K]) groups(lessons []*model.Lesson) ([]K, map[K][]*model.Lesson) {
	order := make([]K, 0)
	groups := make(map[K][]*model.Lesson)
	for _, lesson := range lessons {
		key, ok := c.key(lesson)
		if !ok {
			continue
		}
		if _, exists := groups[key]; !exists {
			order = append(order, key)
		}
		groups[key] = append(groups[key], lesson)
	}
	return order, groups
}

func (c *groupConstraint[K]) sum(members []*model.Lesson) int64 {
	var total int64
	for _, member := range members {
		total += c.value(member)
	}
	return total
}

func (c *groupConstraint[K]) newTracker(lessons []*model.Lesson) tracker {
	return &groupTracker[K]{
		constraint: c,
		lessons:    lessons,
		totals:     make(map[K]int64),
		keys:       make([]K, len(lessons)),
		values:     make([]int64, len(lessons)),
		joined:     make([]bool, len(lessons)),
	}
}

type groupTracker[K comparable] struct {
	constraint *groupConstraint[K]
	lessons    []*model.Lesson
	totals     map[K]int64
	keys       []K
	values     []int64
	joined     []bool
}

func (t *groupTracker[K]) retract(lesson int) score.HardSoftScore {
	if !t.joined[lesson] {
		return score.Zero
	}
	key := t.keys[lesson]
	before := t.constraint.match(key, t.totals[key])
	t.totals[key] -= t.values[lesson]
	after := t.constraint.match(key, t.totals[key])
	t.joined[lesson] = false

	return t.constraint.weight.Multiply(after - before)
}

func (t *groupTracker[K]) insert(lesson int) score.HardSoftScore {
	key, ok := t.constraint.key(t.lessons[lesson])
	if !ok {
		return score.Zero
	}
	value := t.constraint.value(t.lessons[lesson])
	before := t.constraint.match(key, t.totals[key])
	t.totals[key] += value
	after := t.constraint.match(key, t.totals[key])
	t.keys[lesson], t.values[lesson], t.joined[lesson] = key, value, true

	return t.constraint.weight.Multiply(after - before)
}
