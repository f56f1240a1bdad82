package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo department tree, users for every role and a few tasks and projects.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"notifications", "task_comments", "task_tags", "task_assignments",
				"tasks", "project_collaborators", "project_department_access",
				"projects", "users", "departments",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		engineeringID := seedDepartment(db, "Engineering", nil)
		developersID := seedDepartment(db, "Developers", &engineeringID)
		supportID := seedDepartment(db, "Support", &engineeringID)
		hrID := seedDepartment(db, "Human Resources", nil)

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		managerID := seedUser(db, "maya@taskhive.dev", "Maya Manager", string(hash), "MANAGER", engineeringID)
		devID := seedUser(db, "dana@taskhive.dev", "Dana Developer", string(hash), "STAFF", developersID)
		supportUserID := seedUser(db, "sam@taskhive.dev", "Sam Support", string(hash), "STAFF", supportID)
		seedUser(db, "harper@taskhive.dev", "Harper HR", string(hash), "HR_ADMIN", hrID)

		var projectID int64
		row := db.Raw("SELECT id FROM projects WHERE name = ?", "Platform Revamp").Row()
		if err := row.Scan(&projectID); err != nil {
			if err := db.Exec(
				"INSERT INTO projects (name, department_id, creator_id, status, is_archived, created_at, updated_at) VALUES (?, ?, ?, 'ACTIVE', false, now(), now())",
				"Platform Revamp", engineeringID, managerID).Error; err != nil {
				log.Fatalf("failed to insert project: %v", err)
			}
			if err := db.Raw("SELECT id FROM projects WHERE name = ?", "Platform Revamp").Row().Scan(&projectID); err != nil {
				log.Fatalf("failed to lookup project id: %v", err)
			}
			fmt.Println("Seeded project: Platform Revamp")
		}

		taskID := seedTask(db, "Migrate billing service", developersID, managerID, &projectID, nil, 8)
		seedAssignment(db, taskID, devID, managerID)
		seedCollaborator(db, projectID, devID)

		supportTaskID := seedTask(db, "Triage escalation queue", supportID, managerID, nil, nil, 5)
		seedAssignment(db, supportTaskID, supportUserID, managerID)

		subtaskID := seedTask(db, "Write billing migration plan", developersID, managerID, &projectID, &taskID, 7)
		seedAssignment(db, subtaskID, devID, managerID)

		fmt.Println("Seed data ready. All demo accounts use password:", password)
	},
}

func seedDepartment(db *gorm.DB, name string, parentID *int64) int64 {
	var id int64
	row := db.Raw("SELECT id FROM departments WHERE name = ?", name).Row()
	if err := row.Scan(&id); err == nil {
		return id
	}

	if err := db.Exec(
		"INSERT INTO departments (name, parent_id, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())",
		name, parentID).Error; err != nil {
		log.Fatalf("failed to insert department %s: %v", name, err)
	}
	if err := db.Raw("SELECT id FROM departments WHERE name = ?", name).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup department %s: %v", name, err)
	}
	fmt.Println("Seeded department:", name)
	return id
}

func seedUser(db *gorm.DB, email, name, passwordHash, role string, departmentID int64) int64 {
	var id int64
	row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&id); err == nil {
		return id
	}

	if err := db.Exec(
		"INSERT INTO users (email, name, password_hash, role, department_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
		email, name, passwordHash, role, departmentID).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email, "role:", role)
	return id
}

func seedTask(db *gorm.DB, title string, departmentID, ownerID int64, projectID, parentTaskID *int64, priority int) int64 {
	var id int64
	row := db.Raw("SELECT id FROM tasks WHERE title = ?", title).Row()
	if err := row.Scan(&id); err == nil {
		return id
	}

	if err := db.Exec(
		"INSERT INTO tasks (title, description, priority, due_date, status, owner_id, department_id, project_id, parent_task_id, is_archived, created_at, updated_at) VALUES (?, '', ?, now() + interval '14 days', 'TO_DO', ?, ?, ?, ?, false, now(), now())",
		title, priority, ownerID, departmentID, projectID, parentTaskID).Error; err != nil {
		log.Fatalf("failed to insert task %s: %v", title, err)
	}
	if err := db.Raw("SELECT id FROM tasks WHERE title = ?", title).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup task %s: %v", title, err)
	}
	fmt.Println("Seeded task:", title)
	return id
}

func seedAssignment(db *gorm.DB, taskID, userID, assignedByID int64) {
	var exists int
	row := db.Raw("SELECT 1 FROM task_assignments WHERE task_id = ? AND user_id = ?", taskID, userID).Row()
	if err := row.Scan(&exists); err == nil {
		return
	}

	if err := db.Exec(
		"INSERT INTO task_assignments (task_id, user_id, assigned_by_id, assigned_at) VALUES (?, ?, ?, now())",
		taskID, userID, assignedByID).Error; err != nil {
		log.Fatalf("failed to insert assignment: %v", err)
	}
}

func seedCollaborator(db *gorm.DB, projectID, userID int64) {
	var exists int
	row := db.Raw("SELECT 1 FROM project_collaborators WHERE project_id = ? AND user_id = ?", projectID, userID).Row()
	if err := row.Scan(&exists); err == nil {
		return
	}

	if err := db.Exec(
		"INSERT INTO project_collaborators (project_id, user_id, added_at) VALUES (?, ?, now())",
		projectID, userID).Error; err != nil {
		log.Fatalf("failed to insert collaborator: %v", err)
	}
}
