package lead

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"funnelwerk/internal/domain/funnel"
)

// SubmissionRepository stores submissions via GORM.
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

type submissionModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	FunnelID     string `gorm:"column:funnel_id;index"`
	SessionToken string `gorm:"column:session_token;uniqueIndex:idx_one_submission_per_session"`

	ContactName    string `gorm:"column:contact_name"`
	ContactEmail   string `gorm:"column:contact_email"`
	ContactPhone   string `gorm:"column:contact_phone"`
	ContactPLZ     string `gorm:"column:contact_plz"`
	ContactAddress string `gorm:"column:contact_address"`

	Answers        []byte `gorm:"column:answers"`
	TotalScore     int    `gorm:"column:total_score"`
	Classification string `gorm:"column:classification;index"`
	Tags           []byte `gorm:"column:tags"`

	GDPRConsent bool      `gorm:"column:gdpr_consent"`
	UserAgent   string    `gorm:"column:user_agent"`
	Referrer    string    `gorm:"column:referrer"`
	SubmittedAt time.Time `gorm:"column:submitted_at"`

	Status    string    `gorm:"column:status;index"`
	Notes     string    `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string { return "lead_submissions" }

// AutoMigrate creates the lead_submissions table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&submissionModel{})
}

func toModel(s *Submission) (submissionModel, error) {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return submissionModel{}, err
	}
	tags, err := json.Marshal(s.Tags)
	if err != nil {
		return submissionModel{}, err
	}
	return submissionModel{
		ID:             s.ID,
		FunnelID:       s.FunnelID,
		SessionToken:   s.SessionToken,
		ContactName:    s.Contact.Name,
		ContactEmail:   s.Contact.Email,
		ContactPhone:   s.Contact.Phone,
		ContactPLZ:     s.Contact.PLZ,
		ContactAddress: s.Contact.Address,
		Answers:        answers,
		TotalScore:     s.TotalScore,
		Classification: string(s.Classification),
		Tags:           tags,
		GDPRConsent:    s.GDPRConsent,
		UserAgent:      s.UserAgent,
		Referrer:       s.Referrer,
		SubmittedAt:    s.SubmittedAt,
		Status:         string(s.Status),
		Notes:          s.Notes,
	}, nil
}

func toDomain(m submissionModel) (*Submission, error) {
	var answers map[string]funnel.AnswerValue
	if len(m.Answers) > 0 {
		if err := json.Unmarshal(m.Answers, &answers); err != nil {
			return nil, err
		}
	}
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return nil, err
		}
	}
	return &Submission{
		ID:           m.ID,
		FunnelID:     m.FunnelID,
		SessionToken: m.SessionToken,
		Contact: Contact{
			Name:    m.ContactName,
			Email:   m.ContactEmail,
			Phone:   m.ContactPhone,
			PLZ:     m.ContactPLZ,
			Address: m.ContactAddress,
		},
		Answers:        answers,
		TotalScore:     m.TotalScore,
		Classification: funnel.Classification(m.Classification),
		Tags:           tags,
		GDPRConsent:    m.GDPRConsent,
		UserAgent:      m.UserAgent,
		Referrer:       m.Referrer,
		SubmittedAt:    m.SubmittedAt,
		Status:         Status(m.Status),
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// Create inserts a submission. A second insert for the same session token
// violates idx_one_submission_per_session and maps to
// ErrDuplicateSubmission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *Submission) error {
	m, err := toModel(sub)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSubmission
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSubmission
		}
		return err
	}

	sub.ID = m.ID
	sub.CreatedAt = m.CreatedAt
	sub.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*Submission, error) {
	var m submissionModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomain(m)
}

func (r *SubmissionRepository) List(ctx context.Context, status *Status, limit, offset int) ([]*Submission, int, error) {
	q := r.db.WithContext(ctx).Model(&submissionModel{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []submissionModel
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*Submission, 0, len(models))
	for _, m := range models {
		s, err := toDomain(m)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, int(total), nil
}

// ListAll returns every submission, oldest first, for the sync export.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]*Submission, error) {
	var models []submissionModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*Submission, 0, len(models))
	for _, m := range models {
		s, err := toDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status Status, notes string) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	return r.db.WithContext(ctx).Model(&submissionModel{}).Where("id = ?", id).Updates(updates).Error
}

func (r *SubmissionRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.WithContext(ctx).Model(&submissionModel{}).
		Select("status, COUNT(*) AS n").Group("status").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

func (r *SubmissionRepository) CountByClassification(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.WithContext(ctx).Model(&submissionModel{}).
		Select("classification, COUNT(*) AS n").Group("classification").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		counts[class] = n
	}
	return counts, rows.Err()
}
