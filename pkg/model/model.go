package model

import (
	"fmt"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Timeslot is an immutable date and time window a lesson can be scheduled in.
// Two timeslots are interchangeable when their date and bounds are equal, whatever their ids.
type Timeslot struct {
	Id        uint64
	Date      time.Time     // Midnight UTC of the timeslot's day
	StartTime time.Duration // Offset from midnight
	EndTime   time.Duration // Offset from midnight
}

// TimeslotKey is the business key of a timeslot
type TimeslotKey struct {
	Day       int64
	StartTime time.Duration
	EndTime   time.Duration
}

type Room struct {
	Id   uint64
	Name string
}

// Lesson is the planning entity: Timeslot and Room are the planning variables (nil means unassigned)
type Lesson struct {
	Id           uint64
	Subject      string
	Teacher      string
	StudentGroup string
	Exam         bool

	Timeslot *Timeslot
	Room     *Room
}

// Date returns a date at midnight UTC
func Date(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// Clock returns the offset from midnight of the given wall-clock time
func Clock(hour, minute int) time.Duration {
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
}

func NewTimeslot(id uint64, date time.Time, startTime, endTime time.Duration) Timeslot {
	year, month, dayOfMonth := date.Date()
	return Timeslot{
		Id:        id,
		Date:      Date(year, month, dayOfMonth),
		StartTime: startTime,
		EndTime:   endTime,
	}
}

func (timeslot Timeslot) Key() TimeslotKey {
	return TimeslotKey{Day: timeslot.Day(), StartTime: timeslot.StartTime, EndTime: timeslot.EndTime}
}

// Equal compares the business key only
func (timeslot Timeslot) Equal(other Timeslot) bool {
	return timeslot.Key() == other.Key()
}

// Day returns the number of days since the Unix epoch
func (timeslot Timeslot) Day() int64 {
	return timeslot.Date.Unix() / int64(day/time.Second)
}

func (timeslot Timeslot) Start() time.Time {
	return timeslot.Date.Add(timeslot.StartTime)
}

func (timeslot Timeslot) End() time.Time {
	return timeslot.Date.Add(timeslot.EndTime)
}

func (timeslot Timeslot) Duration() time.Duration {
	return timeslot.EndTime - timeslot.StartTime
}

// Hours returns the timeslot's duration in whole hours (truncated)
func (timeslot Timeslot) Hours() int64 {
	return int64(timeslot.Duration() / time.Hour)
}

// Week returns the ISO year and ISO week number of the timeslot's date
func (timeslot Timeslot) Week() (year, week int) {
	return timeslot.Date.ISOWeek()
}

func (timeslot Timeslot) String() string {
	return fmt.Sprintf("%s %s-%s", timeslot.Date.Format(time.DateOnly), formatClock(timeslot.StartTime), formatClock(timeslot.EndTime))
}

// DaysBetween returns the absolute number of whole days between the dates of two timeslots
func DaysBetween(a, b Timeslot) int64 {
	days := b.Day() - a.Day()
	if days < 0 {
		return -days
	}
	return days
}

// WeeksBetween returns the absolute number of whole weeks between the dates of two timeslots
func WeeksBetween(a, b Timeslot) int64 {
	return DaysBetween(a, b) / 7
}

// Gap returns the time from the end of first to the start of second, both on the same date
func Gap(first, second Timeslot) time.Duration {
	return second.StartTime - first.EndTime
}

// BackToBack reports whether a and b share a date and one starts at most maxGap after the other ends
func BackToBack(a, b Timeslot, maxGap time.Duration) bool {
	if a.Day() != b.Day() {
		return false
	}
	following := func(first, second Timeslot) bool {
		gap := Gap(first, second)
		return gap >= 0 && gap <= maxGap
	}
	return following(a, b) || following(b, a)
}

func (room Room) String() string {
	return room.Name
}

// Assigned reports whether both planning variables are set
func (lesson *Lesson) Assigned() bool {
	return lesson.Timeslot != nil && lesson.Room != nil
}

// Unassigned returns the number of planning variables that are not set
func (lesson *Lesson) Unassigned() int64 {
	var unassigned int64
	if lesson.Timeslot == nil {
		unassigned++
	}
	if lesson.Room == nil {
		unassigned++
	}
	return unassigned
}

// SameFacts compares every field but the planning variables
func (lesson *Lesson) SameFacts(other *Lesson) bool {
	return lesson.Id == other.Id &&
		lesson.Subject == other.Subject &&
		lesson.Teacher == other.Teacher &&
		lesson.StudentGroup == other.StudentGroup &&
		lesson.Exam == other.Exam
}

func (lesson *Lesson) String() string {
	timeslot, room := "unassigned", "unassigned"
	if lesson.Timeslot != nil {
		timeslot = lesson.Timeslot.String()
	}
	if lesson.Room != nil {
		room = lesson.Room.String()
	}
	return fmt.Sprintf("%v(%v~%v~%v @ %v in %v)", lesson.Id, lesson.Subject, lesson.Teacher, lesson.StudentGroup, timeslot, room)
}

// MarkExams flags every lesson whose subject contains marker as an exam.
// It is meant to run once, when the problem is built.
func MarkExams(lessons []Lesson, marker string) {
	if marker == "" {
		return
	}
	for i := range lessons {
		if strings.Contains(lessons[i].Subject, marker) {
			lessons[i].Exam = true
		}
	}
}

func formatClock(offset time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(offset/time.Hour), int(offset%time.Hour/time.Minute))
}
