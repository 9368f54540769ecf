package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateUser")
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, customErrors.WrapInternal(customErrors.ErrNotUpdated, "CreateUser")
	}
	return user.ID, nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}

	return u, nil
}

func (p *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("username = ?", username).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByUsername")
	}

	return u, nil
}

func (p *PostgresUserRepo) CountByUsername(ctx context.Context, username string) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&n).Error
	if err != nil {
		return 0, customErrors.WrapInternal(err, "CountByUsername")
	}
	return n, nil
}

func (p *PostgresUserRepo) CountByEmail(ctx context.Context, email string, excludeID uuid.UUID) (int64, error) {
	var n int64
	q := p.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, customErrors.WrapInternal(err, "CountByEmail")
	}
	return n, nil
}

func (p *PostgresUserRepo) CountAnswer(ctx context.Context, username, question, answer string) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND question = ? AND answer = ?", username, question, answer).
		Count(&n).Error
	if err != nil {
		return 0, customErrors.WrapInternal(err, "CountAnswer")
	}
	return n, nil
}

func (p *PostgresUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res := p.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]any{"password": passwordHash, "updated_at": time.Now()})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdatePassword")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotUpdated
	}
	return nil
}

// UpdateSelective never touches username, password or role.
func (p *PostgresUserRepo) UpdateSelective(ctx context.Context, user model.User) error {
	fields := map[string]any{"updated_at": time.Now()}
	for column, value := range map[string]string{
		"email":    user.Email,
		"phone":    user.Phone,
		"question": user.Question,
		"answer":   user.Answer,
	} {
		if value != "" {
			fields[column] = value
		}
	}

	res := p.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(fields)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "UpdateSelective")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotUpdated
	}
	return nil
}

func (p *PostgresUserRepo) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
