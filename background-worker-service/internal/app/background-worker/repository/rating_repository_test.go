package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// RatingRepositoryTestSuite тестовый suite для пересчета агрегатов рейтинга
type RatingRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ServiceRatingRepository
	sqlDB *sql.DB
}

func TestRatingRepositorySuite(t *testing.T) {
	suite.Run(t, new(RatingRepositoryTestSuite))
}

func (s *RatingRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewServiceRatingRepository(s.db)
}

func (s *RatingRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== RecalculateService Tests =====================

func (s *RatingRepositoryTestSuite) TestRecalculateService_Success() {
	ctx := context.Background()
	serviceID := uuid.New().String()

	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE services SET`)).
		WithArgs(serviceID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Act
	err := s.repo.RecalculateService(ctx, serviceID)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestRecalculateService_ServiceAlreadyDeleted() {
	ctx := context.Background()
	serviceID := uuid.New().String()

	// Событие опоздало после каскадного удаления - это не ошибка
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE services SET`)).
		WithArgs(serviceID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Act
	err := s.repo.RecalculateService(ctx, serviceID)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestRecalculateService_DBError() {
	ctx := context.Background()
	serviceID := uuid.New().String()

	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE services SET`)).
		WithArgs(serviceID).
		WillReturnError(sql.ErrConnDone)

	// Act
	err := s.repo.RecalculateService(ctx, serviceID)

	// Assert
	s.Error(err)
	s.Contains(err.Error(), "failed to recalculate service rating")
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== RecalculateAll Tests =====================

func (s *RatingRepositoryTestSuite) TestRecalculateAll_Success() {
	ctx := context.Background()

	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE services SET`)).
		WillReturnResult(sqlmock.NewResult(0, 42))

	// Act
	updated, err := s.repo.RecalculateAll(ctx)

	// Assert
	s.NoError(err)
	s.Equal(int64(42), updated)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestRecalculateAll_DBError() {
	ctx := context.Background()

	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE services SET`)).
		WillReturnError(sql.ErrConnDone)

	// Act
	updated, err := s.repo.RecalculateAll(ctx)

	// Assert
	s.Error(err)
	s.Zero(updated)
	s.Contains(err.Error(), "failed to recalculate all service ratings")
	s.NoError(s.mock.ExpectationsWereMet())
}
