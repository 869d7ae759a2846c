package constraint

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

func randomFixture(random *rand.Rand) ([]model.Timeslot, []model.Room, []*model.Lesson, *Set) {
	monday := model.Date(2023, time.February, 13)
	timeslots := make([]model.Timeslot, 0)
	for dayOffset := range 21 {
		for _, start := range []time.Duration{model.Clock(8, 0), model.Clock(10, 0), model.Clock(12, 0), model.Clock(14, 0)} {
			timeslots = append(timeslots, model.NewTimeslot(uint64(len(timeslots)), monday.AddDate(0, 0, dayOffset), start, start+90*time.Minute))
		}
	}
	rooms := []model.Room{{Id: 0, Name: "Raum"}, {Id: 1, Name: "Labor"}}

	teachers := []string{"Sonja", "Martin", "Norbert", "Elena"}
	subjects := []string{"13.4", "11.5", "2.6 a", "3.6", "Klausur"}
	groups := []string{"Chaosclub", "Other"}
	lessons := make([]*model.Lesson, 40)
	for i := range lessons {
		subject := subjects[random.Intn(len(subjects))]
		lessons[i] = &model.Lesson{
			Id:           uint64(i),
			Subject:      subject,
			Teacher:      teachers[random.Intn(len(teachers))],
			StudentGroup: groups[random.Intn(len(groups))],
			Exam:         subject == "Klausur",
		}
		// Leave some planning variables unassigned
		if random.Intn(5) > 0 {
			lessons[i].Timeslot = &timeslots[random.Intn(len(timeslots))]
		}
		if random.Intn(5) > 0 {
			lessons[i].Room = &rooms[random.Intn(len(rooms))]
		}
	}

	config := DefaultConfig()
	config.TeacherCaps = map[string]float64{"Sonja": 2, "Martin": 4, "Norbert": 0, "Elena": 1}
	config.WeeklyTolerance = 0
	config.ExamWindow = Window{Start: model.Date(2023, time.February, 17), End: model.Date(2023, time.March, 3)}
	set, err := NewTimetableConstraints(config)
	if err != nil {
		panic(err)
	}
	return timeslots, rooms, lessons, set
}

func TestScoreIsIdempotent(t *testing.T) {
	_, _, lessons, set := randomFixture(rand.New(rand.NewSource(7)))

	first := set.Score(lessons)
	second := set.Score(lessons)

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, first.Hard, int64(0))
}

func TestIncrementalScoreMatchesFullScore(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42} {
		//** Arrange
		random := rand.New(rand.NewSource(seed))
		timeslots, rooms, lessons, set := randomFixture(random)
		calculator := set.NewCalculator(lessons)
		require.Equal(t, set.Score(lessons), calculator.Score(), "seed %v: initial score", seed)

		for step := range 500 {
			//** Act
			switch random.Intn(4) {
			case 0: // Change timeslot, possibly unassigning it
				i := random.Intn(len(lessons))
				calculator.Retract(i)
				if random.Intn(10) == 0 {
					lessons[i].Timeslot = nil
				} else {
					lessons[i].Timeslot = &timeslots[random.Intn(len(timeslots))]
				}
				calculator.Insert(i)
			case 1: // Change room
				i := random.Intn(len(lessons))
				calculator.Retract(i)
				lessons[i].Room = &rooms[random.Intn(len(rooms))]
				calculator.Insert(i)
			case 2: // Swap timeslots
				i, j := random.Intn(len(lessons)), random.Intn(len(lessons))
				calculator.Retract(i)
				if i != j {
					calculator.Retract(j)
				}
				lessons[i].Timeslot, lessons[j].Timeslot = lessons[j].Timeslot, lessons[i].Timeslot
				calculator.Insert(i)
				if i != j {
					calculator.Insert(j)
				}
			case 3: // Retract and insert without change
				i := random.Intn(len(lessons))
				calculator.Retract(i)
				calculator.Insert(i)
			}

			//** Assert
			require.Equal(t, calculator.Recompute(), calculator.Score(), "seed %v: step %v", seed, step)
		}
	}
}

func TestCalculatorInitLevel(t *testing.T) {
	timeslot := beforeExams
	lessons := []*model.Lesson{
		{Id: 1, Subject: "Subject1", Teacher: "Teacher1", StudentGroup: "Group1"},
		{Id: 2, Subject: "Subject2", Teacher: "Teacher1", StudentGroup: "Group2"},
	}
	set := NewSet(TeacherConflict(), StudentGroupConflict())
	calculator := set.NewCalculator(lessons)
	assert.Equal(t, score.HardSoftScore{Init: -4}, calculator.Score())
	assert.False(t, calculator.Score().IsFeasible())

	for i := range lessons {
		calculator.Retract(i)
		lessons[i].Timeslot, lessons[i].Room = &timeslot, &room1
		calculator.Insert(i)
	}

	assert.Equal(t, score.Of(-1, 0), calculator.Score())
	assert.True(t, calculator.Score().IsInitialized())
}

func TestSetCheck(t *testing.T) {
	lessons := []*model.Lesson{lesson(1, "3.6", "Martin", "Chaosclub", beforeExams, room1)}

	withCaps := NewSet(TeacherConflict(), MaximumWorkingHours(map[string]float64{"Martin": 18}, 2))
	withoutCaps := NewSet(TeacherConflict(), MaximumWorkingHours(map[string]float64{}, 2))

	assert.NoError(t, withCaps.Check(lessons))
	assert.ErrorIs(t, withoutCaps.Check(lessons), ErrMissingTeacherCap)
	assert.NoError(t, NewSet().Check(lessons))
}

func TestAnalyzeListsWorstConstraintsFirst(t *testing.T) {
	//** Arrange
	lessons := []*model.Lesson{
		lesson(1, "Subject1", "Teacher1", "Group1", beforeExams, room1),
		lesson(2, "Subject2", "Teacher1", "Group1", beforeExams, room2),
		lesson(3, "Subject3", "Teacher1", "Group2", beforeExams, room2),
	}
	set := NewSet(SubjectSpacing(), StudentGroupConflict(), TeacherConflict())

	//** Act
	analyses := set.Analyze(lessons)

	//** Assert
	require.Len(t, analyses, 3)
	assert.Equal(t, TeacherConflictName, analyses[0].Name)
	assert.Equal(t, score.Of(-3, 0), analyses[0].Score)
	assert.Len(t, analyses[0].Matches, 3)
	assert.Equal(t, StudentGroupConflictName, analyses[1].Name)
	assert.Equal(t, score.Of(-1, 0), analyses[1].Score)
	assert.Equal(t, SubjectSpacingName, analyses[2].Name)
	assert.Empty(t, analyses[2].Matches)

	total := score.Zero
	for _, analysis := range analyses {
		total = total.Add(analysis.Score)
	}
	assert.Equal(t, set.Score(lessons), total)
}
