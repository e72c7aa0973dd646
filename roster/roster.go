// Package roster stores the students and teachers of a course in two
// spreadsheet tables keyed by chat username.
package roster

import (
	"context"

	"github.com/ideamans/go-sheettable"
)

// Table titles.
const (
	StudentsTable = "Students"
	TeachersTable = "Teachers"
)

// DefaultTitle is the spreadsheet title used by CreateSpreadsheet when none is given.
const DefaultTitle = "Study staff"

var (
	studentColumns = []string{"username", "fullName", "group", "subgroup"}
	teacherColumns = []string{"username", "fullName"}
)

// Tables returns the roster table definitions, Students first.
func Tables() sheettable.Schema {
	return sheettable.Schema{
		{Title: StudentsTable, Columns: append([]string(nil), studentColumns...)},
		{Title: TeachersTable, Columns: append([]string(nil), teacherColumns...)},
	}
}

// Student is one row of the Students table.
type Student struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Group    string `json:"group"`
	Subgroup string `json:"subgroup"`
}

func (s Student) cells() []string {
	return []string{s.Username, s.FullName, s.Group, s.Subgroup}
}

func studentFrom(v map[string]string) Student {
	return Student{Username: v["username"], FullName: v["fullName"], Group: v["group"], Subgroup: v["subgroup"]}
}

// Teacher is one row of the Teachers table.
type Teacher struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

func (t Teacher) cells() []string {
	return []string{t.Username, t.FullName}
}

func teacherFrom(v map[string]string) Teacher {
	return Teacher{Username: v["username"], FullName: v["fullName"]}
}

// Roster is a typed view over the Students and Teachers tables of a store.
// The store's schema must include Tables().
type Roster struct {
	store *sheettable.Store
}

// New wraps store.
func New(store *sheettable.Store) *Roster {
	return &Roster{store: store}
}

// Store returns the underlying table store.
func (r *Roster) Store() *sheettable.Store {
	return r.store
}

// CreateSpreadsheet creates the backing spreadsheet with every table of the
// store's schema. Zero sizes fall back to the store defaults.
func (r *Roster) CreateSpreadsheet(ctx context.Context, title string, rowCount, columnCount int) (string, error) {
	if title == "" {
		title = DefaultTitle
	}
	return r.store.CreateSpreadsheet(ctx, title, rowCount, columnCount)
}

// AddStudent inserts or replaces the student with the same username.
func (r *Roster) AddStudent(ctx context.Context, s Student) error {
	_, err := r.store.AddRow(ctx, StudentsTable, s.cells())
	return err
}

// RemoveStudent clears the student's row.
func (r *Roster) RemoveStudent(ctx context.Context, username string) error {
	return r.store.RemoveRow(ctx, StudentsTable, username)
}

// StudentByUsername looks a student up.
func (r *Roster) StudentByUsername(ctx context.Context, username string) (Student, bool, error) {
	v, err := r.store.GetRowByKey(ctx, StudentsTable, username)
	if err != nil || len(v) == 0 {
		return Student{}, false, err
	}
	return studentFrom(v), true, nil
}

// StudentUsernames lists the key column of the Students table, blanks included.
func (r *Roster) StudentUsernames(ctx context.Context) ([]string, error) {
	return r.store.ListKeyColumn(ctx, StudentsTable)
}

// Students returns every student in sheet order. Cleared rows are skipped.
func (r *Roster) Students(ctx context.Context) ([]Student, error) {
	rows, err := r.store.Rows(ctx, StudentsTable)
	if err != nil {
		return nil, err
	}
	students := make([]Student, len(rows))
	for i, row := range rows {
		students[i] = studentFrom(row.Values)
	}
	return students, nil
}

// StudentsInGroup returns the students of a group, optionally narrowed to a subgroup.
func (r *Roster) StudentsInGroup(ctx context.Context, group, subgroup string) ([]Student, error) {
	q := sheettable.Where("group", "==", group)
	if subgroup != "" {
		q.Conditions = append(q.Conditions, sheettable.Condition{Column: "subgroup", Operator: "==", Values: []string{subgroup}})
	}
	rows, err := r.store.Query(ctx, StudentsTable, q)
	if err != nil {
		return nil, err
	}
	students := make([]Student, len(rows))
	for i, row := range rows {
		students[i] = studentFrom(row.Values)
	}
	return students, nil
}

// AddTeacher inserts or replaces the teacher with the same username.
func (r *Roster) AddTeacher(ctx context.Context, t Teacher) error {
	_, err := r.store.AddRow(ctx, TeachersTable, t.cells())
	return err
}

// RemoveTeacher clears the teacher's row.
func (r *Roster) RemoveTeacher(ctx context.Context, username string) error {
	return r.store.RemoveRow(ctx, TeachersTable, username)
}

// TeacherByUsername looks a teacher up.
func (r *Roster) TeacherByUsername(ctx context.Context, username string) (Teacher, bool, error) {
	v, err := r.store.GetRowByKey(ctx, TeachersTable, username)
	if err != nil || len(v) == 0 {
		return Teacher{}, false, err
	}
	return teacherFrom(v), true, nil
}

// TeacherUsernames lists the key column of the Teachers table, blanks included.
func (r *Roster) TeacherUsernames(ctx context.Context) ([]string, error) {
	return r.store.ListKeyColumn(ctx, TeachersTable)
}

// Teachers returns every teacher in sheet order. Cleared rows are skipped.
func (r *Roster) Teachers(ctx context.Context) ([]Teacher, error) {
	rows, err := r.store.Rows(ctx, TeachersTable)
	if err != nil {
		return nil, err
	}
	teachers := make([]Teacher, len(rows))
	for i, row := range rows {
		teachers[i] = teacherFrom(row.Values)
	}
	return teachers, nil
}
