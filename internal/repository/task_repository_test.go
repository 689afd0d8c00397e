package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskdeck/taskdeck-api/internal/models"
)

// TaskRepositoryTestSuite defines the test suite for GormTaskRepository
type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository
}

// SetupTest runs before each test
func (suite *TaskRepositoryTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	suite.repo = NewTaskRepository(suite.db)

	suite.Require().NoError(suite.db.Create(&models.User{ID: "alice"}).Error)
	suite.Require().NoError(suite.db.Create(&models.User{ID: "bob"}).Error)
}

// TearDownTest runs after each test
func (suite *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskRepositoryTestSuite) createProject(userID string) *models.Project {
	project := &models.Project{UserID: userID, Name: "Essay"}
	suite.Require().NoError(suite.db.Create(project).Error)
	return project
}

func (suite *TaskRepositoryTestSuite) createTask(userID, projectID, name string, status models.TaskStatus, parentID *string) *models.Task {
	task := &models.Task{
		UserID:    userID,
		ProjectID: projectID,
		Name:      name,
		Status:    status,
		ParentID:  parentID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	time.Sleep(time.Millisecond)
	return task
}

func (suite *TaskRepositoryTestSuite) TestInsertRootTask() {
	project := suite.createProject("alice")

	task, err := suite.repo.InsertRootTask("alice", project.ID, "Write essay")
	suite.Require().NoError(err)

	suite.NotEmpty(task.ID)
	suite.Equal(models.TaskStatusUnprocessed, task.Status)
	suite.Nil(task.ParentID)

	var reloaded models.Project
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", project.ID).Error)
	suite.Require().NotNil(reloaded.RootTaskID)
	suite.Equal(task.ID, *reloaded.RootTaskID)
}

func (suite *TaskRepositoryTestSuite) TestInsertRootTask_RootIDWrittenOnce() {
	project := suite.createProject("alice")

	first, err := suite.repo.InsertRootTask("alice", project.ID, "Write essay")
	suite.Require().NoError(err)

	_, err = suite.repo.InsertRootTask("alice", project.ID, "Another root")
	suite.Require().NoError(err)

	var reloaded models.Project
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", project.ID).Error)
	suite.Require().NotNil(reloaded.RootTaskID)
	suite.Equal(first.ID, *reloaded.RootTaskID)
}

func (suite *TaskRepositoryTestSuite) TestInsertRootTask_ForeignProject() {
	project := suite.createProject("alice")

	_, err := suite.repo.InsertRootTask("bob", project.ID, "Write essay")
	suite.Require().Error(err)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestInsertChildTask() {
	project := suite.createProject("alice")
	parent := suite.createTask("alice", project.ID, "Write essay", models.TaskStatusActive, nil)

	child, err := suite.repo.InsertChildTask("alice", project.ID, "Research", parent.ID)
	suite.Require().NoError(err)

	suite.Require().NotNil(child.ParentID)
	suite.Equal(parent.ID, *child.ParentID)
	suite.Equal(models.TaskStatusUnprocessed, child.Status)
}

func (suite *TaskRepositoryTestSuite) TestInsertChildTask_MissingParent() {
	project := suite.createProject("alice")

	_, err := suite.repo.InsertChildTask("alice", project.ID, "Research", "no-such-parent")
	suite.Require().Error(err)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestFindByID_UserScoped() {
	project := suite.createProject("alice")
	task := suite.createTask("alice", project.ID, "Write essay", models.TaskStatusActive, nil)

	found, err := suite.repo.FindByID("alice", task.ID)
	suite.Require().NoError(err)
	suite.Equal(task.ID, found.ID)

	_, err = suite.repo.FindByID("bob", task.ID)
	suite.Require().Error(err)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestFindByIDAnyOwner() {
	project := suite.createProject("alice")
	task := suite.createTask("alice", project.ID, "Write essay", models.TaskStatusActive, nil)

	found, err := suite.repo.FindByIDAnyOwner(task.ID)
	suite.Require().NoError(err)
	suite.Equal("alice", found.UserID)
}

func (suite *TaskRepositoryTestSuite) TestFindChildren_CreationOrder() {
	project := suite.createProject("alice")
	parent := suite.createTask("alice", project.ID, "Write essay", models.TaskStatusWaiting, nil)
	first := suite.createTask("alice", project.ID, "Research", models.TaskStatusActive, &parent.ID)
	second := suite.createTask("alice", project.ID, "Draft", models.TaskStatusActive, &parent.ID)

	children, err := suite.repo.FindChildren("alice", parent.ID)
	suite.Require().NoError(err)

	suite.Require().Len(children, 2)
	suite.Equal(first.ID, children[0].ID)
	suite.Equal(second.ID, children[1].ID)
}

func (suite *TaskRepositoryTestSuite) TestFindByStatus_Pagination() {
	project := suite.createProject("alice")
	for _, name := range []string{"One", "Two", "Three"} {
		suite.createTask("alice", project.ID, name, models.TaskStatusActive, nil)
	}
	suite.createTask("alice", project.ID, "Done", models.TaskStatusCompleted, nil)
	suite.createTask("bob", suite.createProject("bob").ID, "Other", models.TaskStatusActive, nil)

	tasks, total, err := suite.repo.FindByStatus("alice", models.TaskStatusActive, "asc", 0, 2)
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(tasks, 2)
	suite.Equal("One", tasks[0].Name)
	suite.Equal("Two", tasks[1].Name)

	tasks, total, err = suite.repo.FindByStatus("alice", models.TaskStatusActive, "asc", 2, 2)
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(tasks, 1)
	suite.Equal("Three", tasks[0].Name)
}

func (suite *TaskRepositoryTestSuite) TestFindByStatus_NoLimitReturnsAll() {
	project := suite.createProject("alice")
	for _, name := range []string{"One", "Two", "Three"} {
		suite.createTask("alice", project.ID, name, models.TaskStatusActive, nil)
	}

	tasks, total, err := suite.repo.FindByStatus("alice", models.TaskStatusActive, "desc", 0, 0)
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(tasks, 3)
	suite.Equal("Three", tasks[0].Name)
}

func (suite *TaskRepositoryTestSuite) TestUpdateStatus() {
	project := suite.createProject("alice")
	task := suite.createTask("alice", project.ID, "Write essay", models.TaskStatusUnprocessed, nil)

	updated, err := suite.repo.UpdateStatus("alice", task.ID, models.TaskStatusActive)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusActive, updated.Status)

	_, err = suite.repo.UpdateStatus("bob", task.ID, models.TaskStatusCompleted)
	suite.Require().Error(err)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestDelete_LeavesChildren() {
	project := suite.createProject("alice")
	parent := suite.createTask("alice", project.ID, "Write essay", models.TaskStatusWaiting, nil)
	child := suite.createTask("alice", project.ID, "Research", models.TaskStatusActive, &parent.ID)

	deleted, err := suite.repo.Delete("alice", parent.ID)
	suite.Require().NoError(err)
	suite.Equal(parent.ID, deleted.ID)

	var remaining models.Task
	suite.Require().NoError(suite.db.First(&remaining, "id = ?", child.ID).Error)
	suite.Require().NotNil(remaining.ParentID)
	suite.Equal(parent.ID, *remaining.ParentID)
}

// TestSuite runs the test suite
func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

// TestFindByIDForUpdate_EmitsRowLock verifies the locking clause against the
// postgres dialector, which sqlite cannot exercise.
func TestFindByIDForUpdate_EmitsRowLock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "user_id", "project_id", "name", "status"}).
		AddRow("task-1", "alice", "project-1", "Write essay", "waiting")
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" (.+)FOR UPDATE`).
		WithArgs("task-1", "alice", 1).
		WillReturnRows(rows)

	repo := NewTaskRepository(db)
	task, err := repo.FindByIDForUpdate("alice", "task-1")
	require.NoError(t, err)

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, models.TaskStatusWaiting, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByIDForUpdate_SqliteSkipsLock confirms the sqlite path still reads
// the row without emitting a locking clause sqlite would reject.
func TestFindByIDForUpdate_SqliteSkipsLock(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Project{}, &models.Task{}))

	require.NoError(t, db.Create(&models.User{ID: "alice"}).Error)
	project := &models.Project{UserID: "alice", Name: "Essay"}
	require.NoError(t, db.Create(project).Error)
	task := &models.Task{UserID: "alice", ProjectID: project.ID, Name: "Write essay", Status: models.TaskStatusWaiting}
	require.NoError(t, db.Create(task).Error)

	repo := NewTaskRepository(db)
	found, err := repo.FindByIDForUpdate("alice", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)
}
