package service

import (
	"strings"

	"github.com/Nopass0/hh-autopilot/internal/config"
	"github.com/Nopass0/hh-autopilot/internal/oracle"
)

// ProfileProvider renders the candidate profile and contact directory into
// the shapes the oracle consumes. The profile itself is owned by the profile
// editor subsystem; this is a read-only snapshot.
type ProfileProvider struct {
	profile config.Profile
}

func NewProfileProvider(profile config.Profile) *ProfileProvider {
	return &ProfileProvider{profile: profile}
}

// Resume concatenates the about text, work experience and skills into the
// single free-text blob passed to every oracle call.
func (p *ProfileProvider) Resume() string {
	var b strings.Builder
	b.WriteString(p.profile.About)

	if len(p.profile.Experience) > 0 {
		b.WriteString("\n\nExperience:\n")
		for _, item := range p.profile.Experience {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}

	if len(p.profile.Skills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(p.profile.Skills, ", "))
	}

	return strings.TrimSpace(b.String())
}

// Contact returns the messaging handle and email injected into generated
// cover letters and intros.
func (p *ProfileProvider) Contact() oracle.ContactInfo {
	return oracle.ContactInfo{
		Telegram: p.profile.Telegram,
		Email:    p.profile.Email,
	}
}
