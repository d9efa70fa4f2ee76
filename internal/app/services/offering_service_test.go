package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

func TestOfferingService_CreateOffering(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")

	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 0)
	assert.NotEqual(t, uuid.Nil, offering.ID)
	assert.Equal(t, 0, offering.Capacity)

	got, err := svc.Offerings.GetOffering(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, got.CourseID)

	byTerm, err := svc.Offerings.ListOfferingsByTerm(ctx, fx.currentTerm.ID)
	require.NoError(t, err)
	assert.Len(t, byTerm, 1)

	enrolled, err := svc.Offerings.CurrentEnrollment(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, enrolled)

	require.NoError(t, svc.Offerings.DeleteOffering(ctx, offering.ID))
	_, err = svc.Offerings.GetOffering(ctx, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotFound)
}

func TestOfferingService_CreateOffering_Errors(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")

	_, err := svc.Offerings.CreateOffering(ctx, CreateOfferingInput{
		CourseID: course.ID, TermID: fx.currentTerm.ID, InstructorID: uuid.New(), Capacity: -1,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCapacity)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Offerings.CreateOffering(ctx, CreateOfferingInput{
		CourseID: course.ID, TermID: fx.currentTerm.ID, Capacity: 10,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Offerings.CreateOffering(ctx, CreateOfferingInput{
		CourseID: uuid.New(), TermID: fx.currentTerm.ID, InstructorID: uuid.New(), Capacity: 10,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOfferingService_Meetings(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 30)

	monday, err := svc.Offerings.AddMeetingFromToken(ctx, offering.ID, "Monday", "09:30", "10:45")
	require.NoError(t, err)
	assert.Equal(t, models.Monday, monday.Weekday)
	assert.Equal(t, "10:45", monday.EndTime.String())

	start, _ := models.NewClockTime(9, 30)
	end, _ := models.NewClockTime(10, 45)
	_, err = svc.Offerings.AddMeeting(ctx, offering.ID, models.Wednesday, start, end)
	require.NoError(t, err)

	meetings, err := svc.Offerings.MeetingsFor(ctx, offering.ID)
	require.NoError(t, err)
	require.Len(t, meetings, 2)

	require.NoError(t, svc.Offerings.RemoveMeeting(ctx, monday.ID))
	meetings, err = svc.Offerings.MeetingsFor(ctx, offering.ID)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, models.Wednesday, meetings[0].Weekday)

	assert.ErrorIs(t, svc.Offerings.RemoveMeeting(ctx, monday.ID), apperrors.ErrNotFound)
}

func TestOfferingService_Meetings_Invalid(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 30)

	_, err := svc.Offerings.AddMeetingFromToken(ctx, offering.ID, "Funday", "09:00", "10:00")
	assert.ErrorIs(t, err, apperrors.ErrInvalidWeekday)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Offerings.AddMeetingFromToken(ctx, offering.ID, "friday", "9am", "10:00")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Offerings.AddMeetingFromToken(ctx, offering.ID, "friday", "11:00", "10:00")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTimeRange)

	_, err = svc.Offerings.AddMeetingFromToken(ctx, uuid.New(), "friday", "09:00", "10:00")
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotFound)
}
