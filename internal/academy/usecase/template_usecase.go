package usecase

import (
	"context"
	"errors"
	"sort"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
	"showcase-platform/internal/security"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

// MaxTemplateFileSize caps a single uploaded template file.
const MaxTemplateFileSize = 5 << 20

// TemplateRequest creates or replaces a template's metadata.
type TemplateRequest struct {
	Name                 string                 `json:"name" validate:"required,max=100"`
	Description          string                 `json:"description,omitempty" validate:"max=2000"`
	ThumbnailURL         string                 `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	IsActive             bool                   `json:"isActive"`
	DefaultTheme         string                 `json:"defaultTheme,omitempty" validate:"max=50"`
	Features             []string               `json:"features,omitempty" validate:"dive,required"`
	CustomizationOptions map[string]interface{} `json:"customizationOptions,omitempty"`
}

// TemplateUsecase manages showcase templates and their files in the template bucket.
type TemplateUsecase struct {
	deps
	templates repository.TemplateRepository
	store     storage.ObjectStore
}

func NewTemplateUsecase(templates repository.TemplateRepository, store storage.ObjectStore, events eventbus.EventBusInterface, log logger.Logger) *TemplateUsecase {
	return &TemplateUsecase{
		deps:      newDeps(events, log, "template-usecase"),
		templates: templates,
		store:     store,
	}
}

func (uc *TemplateUsecase) WithClock(c Clock) *TemplateUsecase {
	uc.now = c
	return uc
}

func (uc *TemplateUsecase) Create(ctx context.Context, actor security.Subject, req TemplateRequest) (*model.Template, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	now := uc.now()
	t := &model.Template{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Description:          req.Description,
		ThumbnailURL:         req.ThumbnailURL,
		IsActive:             req.IsActive,
		DefaultTheme:         req.DefaultTheme,
		Features:             req.Features,
		CustomizationOptions: req.CustomizationOptions,
		TemplateFiles:        map[string]string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := uc.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	uc.emit(ctx, eventbus.EventTypeResourceCreated, actor, "template", t.ID, "", nil)
	return t, nil
}

// Get returns a template. Inactive templates are visible to admins only.
func (uc *TemplateUsecase) Get(ctx context.Context, actor security.Subject, id string) (*model.Template, error) {
	t, err := uc.templates.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTemplateNotFound)
	}
	if !t.IsActive && !isAdmin(actor) {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

// List returns active templates, or every template for admins asking for all.
func (uc *TemplateUsecase) List(ctx context.Context, actor security.Subject, includeInactive bool) ([]*model.Template, error) {
	return uc.templates.List(ctx, !(includeInactive && isAdmin(actor)))
}

func (uc *TemplateUsecase) Update(ctx context.Context, actor security.Subject, id string, req TemplateRequest) (*model.Template, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	t, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	t.Name = req.Name
	t.Description = req.Description
	t.ThumbnailURL = req.ThumbnailURL
	t.IsActive = req.IsActive
	t.DefaultTheme = req.DefaultTheme
	t.Features = req.Features
	t.CustomizationOptions = req.CustomizationOptions
	t.UpdatedAt = uc.now()
	if err := uc.templates.Update(ctx, t); err != nil {
		return nil, notFound(err, ErrTemplateNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "template", t.ID, "", nil)
	return t, nil
}

// Delete removes the template and every file stored for it.
func (uc *TemplateUsecase) Delete(ctx context.Context, actor security.Subject, id string) error {
	if !isAdmin(actor) {
		return ErrForbidden
	}
	if err := uc.templates.Delete(ctx, id); err != nil {
		return notFound(err, ErrTemplateNotFound)
	}
	if n, err := uc.store.DeletePrefix(ctx, storage.BucketTemplates, model.FileKey(id, "")); err != nil {
		uc.log.WithContext(ctx).Warnf("failed to remove files of template %s: %v", id, err)
	} else if n > 0 {
		uc.log.WithContext(ctx).Debugf("removed %d files of template %s", n, id)
	}
	uc.emit(ctx, eventbus.EventTypeResourceDeleted, actor, "template", id, "", nil)
	return nil
}

// UploadFile stores a template file such as index.html or assets/logo.png.
func (uc *TemplateUsecase) UploadFile(ctx context.Context, actor security.Subject, id, name string, data []byte) (*model.Template, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if err := storage.ValidateKey(name); err != nil {
		return nil, apperrors.NewValidationError("invalid file name")
	}
	if len(data) == 0 || len(data) > MaxTemplateFileSize {
		return nil, apperrors.NewValidationError("file must be between 1 byte and 5 MiB")
	}
	t, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	key := model.FileKey(id, name)
	if _, err := uc.store.Put(ctx, storage.BucketTemplates, key, data, storage.DetectContentType(name, data)); err != nil {
		return nil, err
	}
	if t.TemplateFiles == nil {
		t.TemplateFiles = map[string]string{}
	}
	t.TemplateFiles[name] = key
	t.UpdatedAt = uc.now()
	if err := uc.templates.Update(ctx, t); err != nil {
		return nil, notFound(err, ErrTemplateNotFound)
	}
	return t, nil
}

// File reads a stored template file.
func (uc *TemplateUsecase) File(ctx context.Context, actor security.Subject, id, name string) (*storage.Object, error) {
	t, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	key, ok := t.TemplateFiles[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	obj, err := uc.store.Get(ctx, storage.BucketTemplates, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrFileNotFound
	}
	return obj, err
}

// Files returns the file names of a template in order.
func (uc *TemplateUsecase) Files(ctx context.Context, actor security.Subject, id string) ([]string, error) {
	t, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(t.TemplateFiles))
	for name := range t.TemplateFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (uc *TemplateUsecase) DeleteFile(ctx context.Context, actor security.Subject, id, name string) error {
	if !isAdmin(actor) {
		return ErrForbidden
	}
	t, err := uc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	key, ok := t.TemplateFiles[name]
	if !ok {
		return ErrFileNotFound
	}
	if err := uc.store.Delete(ctx, storage.BucketTemplates, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return err
	}
	delete(t.TemplateFiles, name)
	t.UpdatedAt = uc.now()
	return notFound(uc.templates.Update(ctx, t), ErrTemplateNotFound)
}
