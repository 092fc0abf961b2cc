package services

import (
	"errors"
	"time"

	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ExamInput struct {
	Subject  string    `json:"subject" binding:"required,max=100"`
	ExamType string    `json:"exam_type" binding:"max=50"`
	ExamDate time.Time `json:"exam_date" binding:"required"`
	Location string    `json:"location" binding:"max=100"`
	Notes    string    `json:"notes"`
}

type ExamService interface {
	CreateExam(db *gorm.DB, userID uuid.UUID, input ExamInput) (*models.Exam, error)
	ListExams(db *gorm.DB, userID uuid.UUID) ([]models.Exam, error)
	UpdateExam(db *gorm.DB, userID, examID uuid.UUID, input ExamInput) (*models.Exam, error)
	DeleteExam(db *gorm.DB, userID, examID uuid.UUID) error
}

type ExamServiceImpl struct{}

func NewExamService() *ExamServiceImpl {
	return &ExamServiceImpl{}
}

func (s *ExamServiceImpl) CreateExam(db *gorm.DB, userID uuid.UUID, input ExamInput) (*models.Exam, error) {
	exam := models.Exam{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		Subject:   input.Subject,
		ExamType:  input.ExamType,
		ExamDate:  input.ExamDate.UTC(),
		Location:  input.Location,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (s *ExamServiceImpl) ListExams(db *gorm.DB, userID uuid.UUID) ([]models.Exam, error) {
	var exams []models.Exam
	if err := db.Where("user_id = ?", userID).Order("exam_date asc").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (s *ExamServiceImpl) getOwned(db *gorm.DB, userID, examID uuid.UUID) (*models.Exam, error) {
	var exam models.Exam
	if err := db.First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if exam.UserID != userID {
		return nil, ErrUnauthorized
	}
	return &exam, nil
}

func (s *ExamServiceImpl) UpdateExam(db *gorm.DB, userID, examID uuid.UUID, input ExamInput) (*models.Exam, error) {
	exam, err := s.getOwned(db, userID, examID)
	if err != nil {
		return nil, err
	}

	exam.Subject = input.Subject
	exam.ExamType = input.ExamType
	exam.ExamDate = input.ExamDate.UTC()
	exam.Location = input.Location
	exam.Notes = input.Notes

	if err := db.Save(exam).Error; err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamServiceImpl) DeleteExam(db *gorm.DB, userID, examID uuid.UUID) error {
	exam, err := s.getOwned(db, userID, examID)
	if err != nil {
		return err
	}
	return db.Delete(exam).Error
}
