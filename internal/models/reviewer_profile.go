package models

import "time"

// Reviewer levels, lowest to highest. The top three tiers mark a reviewer
// as trusted for labeling purposes.
const (
	LevelBronze   = "bronze"
	LevelSilver   = "silver"
	LevelGold     = "gold"
	LevelPlatinum = "platinum"
	LevelElite    = "elite"
)

// ReviewerProfile is the per-user reputation aggregate. Created lazily on
// first review (or first profile read), mutated on every submission and
// moderation penalty.
type ReviewerProfile struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex"`

	VerifiedMobile bool `json:"verified_mobile" gorm:"default:false"`
	VerifiedEmail  bool `json:"verified_email" gorm:"default:false"`

	TotalReviews      int        `json:"total_reviews" gorm:"default:0"`
	TotalOrders       int        `json:"total_orders" gorm:"default:0"`
	HelpfulReviews    int        `json:"helpful_reviews" gorm:"default:0"`
	TotalHelpfulVotes int        `json:"total_helpful_votes" gorm:"default:0"`
	FlaggedReviews    int        `json:"flagged_reviews" gorm:"default:0"`
	LastReviewDate    *time.Time `json:"last_review_date,omitempty"`

	AvgTrustScore    float64 `json:"avg_trust_score" gorm:"default:50"`
	ReviewerLevel    string  `json:"reviewer_level" gorm:"default:bronze"`
	TotalPoints      int     `json:"total_points" gorm:"default:0"`
	TotalCoinsEarned int     `json:"total_coins_earned" gorm:"default:0"`

	Devices     []DeviceRecord `json:"devices" gorm:"serializer:json"`
	IPAddresses []IPRecord     `json:"ip_addresses" gorm:"serializer:json"`

	IsBanned     bool       `json:"is_banned" gorm:"default:false"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BanExpiresAt *time.Time `json:"ban_expires_at,omitempty"`
	WarningCount int        `json:"warning_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DeviceRecord struct {
	Fingerprint string    `json:"fingerprint"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	ReviewCount int       `json:"review_count"`
}

type IPRecord struct {
	IP          string    `json:"ip"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	ReviewCount int       `json:"review_count"`
}

// AccountAgeDays derives the account age from profile creation time.
func (p *ReviewerProfile) AccountAgeDays(now time.Time) int {
	age := now.Sub(p.CreatedAt)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}

// AddPoints adjusts total points (delta may be negative for penalties) and
// recomputes the level. Level is always a pure function of points.
func (p *ReviewerProfile) AddPoints(delta int) {
	p.TotalPoints += delta

	switch {
	case p.TotalPoints >= 1000:
		p.ReviewerLevel = LevelElite
	case p.TotalPoints >= 500:
		p.ReviewerLevel = LevelPlatinum
	case p.TotalPoints >= 250:
		p.ReviewerLevel = LevelGold
	case p.TotalPoints >= 100:
		p.ReviewerLevel = LevelSilver
	default:
		p.ReviewerLevel = LevelBronze
	}
}

// IsTrustedLevel reports whether the reviewer sits in the top three tiers.
func (p *ReviewerProfile) IsTrustedLevel() bool {
	switch p.ReviewerLevel {
	case LevelGold, LevelPlatinum, LevelElite:
		return true
	}
	return false
}

// TrackDevice records a device fingerprint in the capped history ring.
func (p *ReviewerProfile) TrackDevice(fingerprint string, now time.Time, limit int) {
	if fingerprint == "" || fingerprint == "unknown" {
		return
	}

	for i := range p.Devices {
		if p.Devices[i].Fingerprint == fingerprint {
			p.Devices[i].LastSeen = now
			p.Devices[i].ReviewCount++
			return
		}
	}

	p.Devices = append(p.Devices, DeviceRecord{
		Fingerprint: fingerprint,
		FirstSeen:   now,
		LastSeen:    now,
		ReviewCount: 1,
	})
	if limit > 0 && len(p.Devices) > limit {
		p.Devices = p.Devices[len(p.Devices)-limit:]
	}
}

// TrackIP records a submitting IP in the capped history ring.
func (p *ReviewerProfile) TrackIP(ip string, now time.Time, limit int) {
	if ip == "" || ip == "unknown" {
		return
	}

	for i := range p.IPAddresses {
		if p.IPAddresses[i].IP == ip {
			p.IPAddresses[i].LastSeen = now
			p.IPAddresses[i].ReviewCount++
			return
		}
	}

	p.IPAddresses = append(p.IPAddresses, IPRecord{
		IP:        ip,
		FirstSeen: now,
		LastSeen:  now,
		ReviewCount: 1,
	})
	if limit > 0 && len(p.IPAddresses) > limit {
		p.IPAddresses = p.IPAddresses[len(p.IPAddresses)-limit:]
	}
}

// BanActive reports whether a ban is in force at the given time. A ban with
// a past expiry is treated as expired; callers clear and persist it.
func (p *ReviewerProfile) BanActive(now time.Time) bool {
	if !p.IsBanned {
		return false
	}
	if p.BanExpiresAt != nil && now.After(*p.BanExpiresAt) {
		return false
	}
	return true
}

// ClearBan resets all ban fields.
func (p *ReviewerProfile) ClearBan() {
	p.IsBanned = false
	p.BanReason = ""
	p.BanExpiresAt = nil
}
