package showcase

import (
	"context"

	"showcase-platform/internal/academy"
	academymodel "showcase-platform/internal/academy/domain/model"
	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/usecase"
)

// academyBridge answers the showcase's questions about students, their selected
// submissions and templates from the academy module.
type academyBridge struct {
	academy *academy.Module
}

func (b academyBridge) Student(ctx context.Context, userID string) (*usecase.Student, error) {
	p, err := b.academy.Profiles().GetStudentProfileByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := &usecase.Student{
		ProfileID:    p.ID,
		FullName:     p.FullName(),
		Title:        p.Title,
		Bio:          p.Bio,
		ImageURL:     p.ProfileImageURL,
		Location:     p.Location,
		ContactEmail: p.ContactEmail,
		SocialLinks:  p.SocialLinks,
	}
	for _, skill := range p.Skills {
		s.Skills = append(s.Skills, skill.Name)
	}
	return s, nil
}

func (b academyBridge) ShowcaseProjects(ctx context.Context, userID string) ([]model.Project, error) {
	subs, err := b.academy.Submissions().ShowcaseProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(subs))
	for _, s := range subs {
		out = append(out, projectFrom(s))
	}
	return out, nil
}

func projectFrom(s *academymodel.Submission) model.Project {
	return model.Project{
		ID:               s.ID,
		SubmissionID:     s.ID,
		Title:            s.Title,
		Description:      s.Description,
		Technologies:     s.Technologies,
		FeaturedImageURL: s.FeaturedImageURL,
		RepoLink:         s.RepoLink,
		DemoLink:         s.DemoLink,
		DeployedURL:      s.DeployedURL,
	}
}

// TemplateExists accepts active templates only.
func (b academyBridge) TemplateExists(ctx context.Context, id string) error {
	_, err := b.academy.Templates().Get(ctx, security.Subject{Role: authmodel.RoleGuest}, id)
	return err
}
