package profile

import (
	"bytes"
	"context"
	"testing"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	profileDto "anoa.com/campusrecruit/internal/modules/profile/dto"
	"anoa.com/campusrecruit/internal/modules/profile/repository"
	upload "anoa.com/campusrecruit/internal/modules/upload/service"
	"anoa.com/campusrecruit/pkg/apperror"
	commonDto "anoa.com/campusrecruit/pkg/dto"
	"anoa.com/campusrecruit/pkg/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	students map[uuid.UUID]*entity.StudentProfile
	stats    repository.ApplicationStats
	renamed  *string
}

func (f *fakeProfiles) FindStudentByUserID(_ context.Context, userID uuid.UUID) (*entity.StudentProfile, error) {
	if s, ok := f.students[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeProfiles) FindCompanyByUserID(context.Context, uuid.UUID) (*entity.CompanyProfile, error) {
	return nil, apperror.ErrNotFound
}

func (f *fakeProfiles) SaveStudent(_ context.Context, userID uuid.UUID, name *string, p *entity.StudentProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.students[userID] = &cp
	f.renamed = name
	return nil
}

func (f *fakeProfiles) StudentStats(context.Context, uuid.UUID) (repository.ApplicationStats, error) {
	return f.stats, nil
}

type fakeUsers struct{ user *entity.User }

func (f *fakeUsers) Create(context.Context, *entity.User) error { return nil }
func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, apperror.ErrNotFound
	}
	cp := *f.user
	return &cp, nil
}
func (f *fakeUsers) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, apperror.ErrNotFound
}
func (f *fakeUsers) Update(context.Context, *entity.User) error { return nil }
func (f *fakeUsers) Count(context.Context) (int64, error) { return 1, nil }
func (f *fakeUsers) FindRecent(context.Context, int) ([]entity.User, error) { return nil, nil }

type fakeUploads struct{ kinds []upload.Kind }

func (f *fakeUploads) Upload(_ context.Context, kind upload.Kind, file *commonDto.FileUpload) (*storage.UploadResult, error) {
	f.kinds = append(f.kinds, kind)
	return &storage.UploadResult{URL: "https://cdn.test/" + string(kind) + "/" + file.FileName}, nil
}

func setup() (*fakeProfiles, *fakeUploads, *entity.User, ProfileService) {
	user := &entity.User{ID: uuid.New(), Name: "Ana", Email: "ana@uni.edu", Role: entity.RoleStudent}
	profiles := &fakeProfiles{students: map[uuid.UUID]*entity.StudentProfile{}}
	uploads := &fakeUploads{}
	return profiles, uploads, user, NewProfileService(profiles, &fakeUsers{user: user}, uploads)
}

func strp(s string) *string { return &s }

func TestGetStudentProfileWithoutProfileRow(t *testing.T) {
	_, _, user, svc := setup()

	res, err := svc.GetStudentProfile(context.Background(), &authz.Principal{UserID: user.ID, Role: entity.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "ana@uni.edu", res.Email)
	assert.Equal(t, []string{}, res.Skills)
	assert.Zero(t, res.Stats.Applications)
}

func TestGetStudentProfileRequiresStudent(t *testing.T) {
	_, _, user, svc := setup()

	_, err := svc.GetStudentProfile(context.Background(), &authz.Principal{UserID: user.ID, Role: entity.RoleCompany})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUpdateStudentProfile(t *testing.T) {
	profiles, uploads, user, svc := setup()
	profiles.students[user.ID] = &entity.StudentProfile{ID: uuid.New(), UserID: user.ID, Phone: "111", Bio: "old"}
	profiles.stats = repository.ApplicationStats{Applications: 3, Interviews: 1, Offers: 1}

	image := &commonDto.FileUpload{Reader: bytes.NewReader([]byte("img")), FileName: "me.png"}
	res, err := svc.UpdateStudentProfile(context.Background(),
		&authz.Principal{UserID: user.ID, Role: entity.RoleStudent},
		profileDto.UpdateStudentProfileInput{
			Name:   strp("  Ana Maria "),
			Bio:    strp("Backend enthusiast"),
			Skills: strp("Go, SQL, ,Redis"),
		},
		image, nil,
	)
	require.NoError(t, err)

	assert.Equal(t, []upload.Kind{upload.KindProfileImage}, uploads.kinds)
	assert.Equal(t, "Ana Maria", res.Name)
	assert.Equal(t, "111", res.Phone, "unset fields are kept")
	assert.Equal(t, "Backend enthusiast", res.Bio)
	assert.Equal(t, []string{"Go", "SQL", "Redis"}, res.Skills)
	assert.Equal(t, "https://cdn.test/profile_image/me.png", res.ProfileImageURL)
	assert.Equal(t, int64(3), res.Stats.Applications)
	require.NotNil(t, profiles.renamed)
	assert.Equal(t, "Ana Maria", *profiles.renamed)
}

func TestParseSkills(t *testing.T) {
	assert.Equal(t, pq.StringArray{"a", "b"}, ParseSkills(" a ,, b ,"))
	assert.Nil(t, ParseSkills(" , "))
}
