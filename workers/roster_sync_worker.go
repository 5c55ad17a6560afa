// workers/roster_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"gamification-engine/models"
	"gamification-engine/utils"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RosterSyncClient pulls group/project/member rosters from the learning
// platform and mirrors them into the engine's player hierarchy.
type RosterSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewRosterSyncClient(db *gorm.DB) *RosterSyncClient {
	baseURL := os.Getenv("LEARNING_PLATFORM_URL")
	if baseURL == "" {
		log.Fatal("LEARNING_PLATFORM_URL environment variable is required")
	}
	token := os.Getenv("ENGINE_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("ENGINE_SERVICE_TOKEN environment variable is required for roster sync")
	}

	return &RosterSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		HTTPClient: utils.HTTPClient,
	}
}

type RosterMember struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type RosterProject struct {
	SubjectAcronym string         `json:"subject_acronym"`
	Course         int            `json:"course"`
	Period         string         `json:"period"`
	GroupName      string         `json:"group_name"`
	ProjectName    string         `json:"project_name"`
	Members        []RosterMember `json:"members"`
}

// GetChangedRosters fetches every roster modified since the given time.
func (c *RosterSyncClient) GetChangedRosters(ctx context.Context, since time.Time) ([]RosterProject, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/rosters", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call learning platform: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("learning platform returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Projects []RosterProject `json:"projects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode roster response: %w", err)
	}
	return response.Projects, nil
}

// SyncRoster upserts one project roster: the team player, its individual
// members, and the group/project structure under the owning game.
func (c *RosterSyncClient) SyncRoster(project RosterProject) error {
	period, ok := models.ParsePeriod(project.Period)
	if !ok {
		return fmt.Errorf("roster for unknown period '%s'", project.Period)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		teamName := slug.Make(fmt.Sprintf("%s-%d-%s", project.SubjectAcronym, project.Course, project.ProjectName))
		team := models.Player{Playername: teamName, Type: models.PlayerTypeTeam}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "playername"}},
			DoNothing: true,
		}).Create(&team).Error; err != nil {
			return err
		}
		if err := tx.Where("playername = ?", teamName).First(&team).Error; err != nil {
			return err
		}

		for _, member := range project.Members {
			playername := slug.Make(fmt.Sprintf("%s %s", member.FirstName, member.LastName))
			individual := models.Player{
				Playername: playername,
				Type:       models.PlayerTypeIndividual,
				TeamID:     &team.ID,
				FirstName:  member.FirstName,
				LastName:   member.LastName,
				Email:      member.Email,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "playername"}},
				DoUpdates: clause.AssignmentColumns([]string{"team_id", "first_name", "last_name", "email"}),
			}).Create(&individual).Error; err != nil {
				return err
			}
		}

		var group models.GameGroup
		err := tx.Where("game_subject_acronym = ? AND game_course = ? AND game_period = ? AND name = ?",
			project.SubjectAcronym, project.Course, period, project.GroupName).
			First(&group).Error
		if err == gorm.ErrRecordNotFound {
			group = models.GameGroup{
				Name:               project.GroupName,
				GameSubjectAcronym: project.SubjectAcronym,
				GameCourse:         project.Course,
				GamePeriod:         period,
			}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var existing models.Project
		err = tx.Where("game_group_id = ? AND name = ?", group.ID, project.ProjectName).
			First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&models.Project{
				Name:         project.ProjectName,
				GameGroupID:  group.ID,
				TeamPlayerID: team.ID,
			}).Error
		}
		if err != nil {
			return err
		}
		existing.TeamPlayerID = team.ID
		return tx.Save(&existing).Error
	})
}

// PollRosters mirrors roster changes on a fixed interval until ctx is done.
func PollRosters(ctx context.Context, client *RosterSyncClient, pollInterval time.Duration) {
	log.Println("Starting roster polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Roster polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			projects, err := client.GetChangedRosters(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling rosters: %v", err)
				continue
			}
			if len(projects) == 0 {
				continue
			}

			log.Printf("📥 Received %d roster change(s) from learning platform.", len(projects))
			failed := 0
			for _, project := range projects {
				if err := client.SyncRoster(project); err != nil {
					log.Printf("❌ Failed to sync roster for project %s: %v", project.ProjectName, err)
					failed++
				}
			}
			if failed > 0 {
				// Retry the same window next tick so failed rosters are not lost.
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Synced %d roster(s).", len(projects))
		}
	}
}
