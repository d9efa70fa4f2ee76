package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

const microsecondsPerMinute = 60 * 1_000_000

// clockToTime converts a ClockTime into a TIME column value.
func clockToTime(c models.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c) * microsecondsPerMinute, Valid: true}
}

// timeToClock converts a TIME column value into a ClockTime, dropping seconds.
func timeToClock(t pgtype.Time) (models.ClockTime, error) {
	if !t.Valid {
		return 0, fmt.Errorf("unexpected NULL time of day")
	}
	return models.ClockTime(t.Microseconds / microsecondsPerMinute), nil
}

// weekdayOrder lists the weekday tokens in calendar order for ORDER BY.
func weekdayOrder() []string {
	order := make([]string, len(models.Weekdays))
	for i, d := range models.Weekdays {
		order[i] = d.String()
	}
	return order
}

// MeetingRepository handles database operations for course meeting times
type MeetingRepository struct {
	db *pgxpool.Pool
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a meeting slot and assigns its ID
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.MeetingEntry) error {
	query := `
		INSERT INTO course_meeting_times (offering_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		meeting.OfferingID,
		meeting.Weekday.String(),
		clockToTime(meeting.StartTime),
		clockToTime(meeting.EndTime),
	).Scan(&meeting.ID)
	if err != nil {
		return translate(err, "creating meeting", nil, nil)
	}
	return nil
}

// ListByOffering retrieves the meeting slots of an offering in weekday order
func (r *MeetingRepository) ListByOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.MeetingEntry, error) {
	query := `
		SELECT id, offering_id, day_of_week, start_time, end_time
		FROM course_meeting_times
		WHERE offering_id = $1
		ORDER BY array_position($2::varchar[], day_of_week), start_time
	`

	rows, err := r.db.Query(ctx, query, offeringID, weekdayOrder())
	if err != nil {
		return nil, translate(err, "listing meetings", nil, nil)
	}
	defer rows.Close()

	var meetings []*models.MeetingEntry
	for rows.Next() {
		var (
			meeting    models.MeetingEntry
			day        string
			start, end pgtype.Time
		)
		if err := rows.Scan(&meeting.ID, &meeting.OfferingID, &day, &start, &end); err != nil {
			return nil, translate(err, "scanning meeting", nil, nil)
		}
		if meeting.Weekday, err = models.ParseWeekday(day); err != nil {
			return nil, err
		}
		if meeting.StartTime, err = timeToClock(start); err != nil {
			return nil, err
		}
		if meeting.EndTime, err = timeToClock(end); err != nil {
			return nil, err
		}
		meetings = append(meetings, &meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing meetings", nil, nil)
	}
	return meetings, nil
}

// Delete deletes a meeting slot by ID
func (r *MeetingRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM course_meeting_times WHERE id = $1`, id)
	if err != nil {
		return translate(err, "deleting meeting", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMeetingNotFound
	}
	return nil
}
