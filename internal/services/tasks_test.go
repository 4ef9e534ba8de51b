package services_test

import (
	"context"
	"testing"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"
	"taskerhub/backend/internal/services"
	"taskerhub/backend/internal/testutil"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TaskServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *repositories.GormStore
	service *services.TaskServiceImpl

	owner    *models.User
	stranger *models.User
	admin    *models.User
	profile  *models.Profile
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = testutil.NewStore(suite.T())
	suite.service = services.NewTaskService(suite.store, services.NewAuthorizer(), nil)

	suite.owner = testutil.CreateUser(suite.T(), suite.store, models.RoleTasker)
	suite.stranger = testutil.CreateUser(suite.T(), suite.store, models.RoleTasker)
	suite.admin = testutil.CreateUser(suite.T(), suite.store, models.RoleAdmin)
	suite.profile = testutil.CreateProfile(suite.T(), suite.store, suite.owner, "Acme")
}

func (suite *TaskServiceTestSuite) input(title string) services.TaskInput {
	budget := decimal.RequireFromString("120.50")
	return services.TaskInput{
		Title:       strPtr(title),
		Description: strPtr("Carry boxes upstairs"),
		Budget:      &budget,
	}
}

func (suite *TaskServiceTestSuite) TestCreate() {
	task, err := suite.service.Create(suite.ctx, requesterOf(suite.owner), suite.profile.ID, suite.input("Move sofa"))
	suite.Require().NoError(err)

	suite.Equal(models.TaskOpen, task.Status)
	suite.Equal(suite.profile.ID, task.ProfileID)
	suite.Equal(suite.owner.ID, task.UserID)

	stored, err := suite.store.Tasks().FindByID(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("120.50").Equal(stored.Budget))
}

func (suite *TaskServiceTestSuite) TestCreate_ParentNotFound() {
	missing := uuid.Must(uuid.NewV4())

	_, err := suite.service.Create(suite.ctx, requesterOf(suite.owner), missing, suite.input("Orphan"))
	suite.True(services.IsKind(err, services.KindParentNotFound), "got %v", err)
	suite.Contains(err.Error(), missing.String())
}

func (suite *TaskServiceTestSuite) TestCreate_ForbiddenOnForeignProfile() {
	_, err := suite.service.Create(suite.ctx, requesterOf(suite.stranger), suite.profile.ID, suite.input("Sneaky"))
	suite.True(services.IsKind(err, services.KindForbidden), "got %v", err)

	n, err := suite.store.Tasks().Count(suite.ctx, repositories.Query{})
	suite.Require().NoError(err)
	suite.Zero(n)
}

func (suite *TaskServiceTestSuite) TestCreate_AdminOnForeignProfile() {
	task, err := suite.service.Create(suite.ctx, requesterOf(suite.admin), suite.profile.ID, suite.input("Admin job"))
	suite.Require().NoError(err)
	suite.Equal(suite.admin.ID, task.UserID)
}

func (suite *TaskServiceTestSuite) TestCreate_NegativeBudget() {
	in := suite.input("Cheap")
	negative := decimal.NewFromInt(-1)
	in.Budget = &negative

	_, err := suite.service.Create(suite.ctx, requesterOf(suite.owner), suite.profile.ID, in)
	suite.True(services.IsKind(err, services.KindValidationFailed), "got %v", err)
}

func (suite *TaskServiceTestSuite) TestGet_IncludesProfileSummary() {
	task := testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "Paint fence")

	detail, err := suite.service.Get(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal("Paint fence", detail.Title)
	suite.Equal(models.ProfileSummary{ID: suite.profile.ID, Name: "Acme", Description: "Profile Acme"}, detail.Profile)
}

func (suite *TaskServiceTestSuite) TestListByProfile() {
	other := testutil.CreateProfile(suite.T(), suite.store, suite.owner, "Other")
	testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "one")
	testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "two")
	testutil.CreateTask(suite.T(), suite.store, other, suite.owner, "elsewhere")

	tasks, err := suite.service.ListByProfile(suite.ctx, suite.profile.ID)
	suite.Require().NoError(err)
	suite.Len(tasks, 2)
	for _, task := range tasks {
		suite.Equal(suite.profile.ID, task.ProfileID)
	}
}

func (suite *TaskServiceTestSuite) TestUpdate() {
	task := testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "Paint fence")
	status := models.TaskAssigned

	updated, err := suite.service.Update(suite.ctx, requesterOf(suite.owner), task.ID, services.TaskInput{Status: &status})
	suite.Require().NoError(err)
	suite.Equal(models.TaskAssigned, updated.Status)
	suite.Equal("Paint fence", updated.Title)
}

func (suite *TaskServiceTestSuite) TestUpdate_InvalidStatus() {
	task := testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "Paint fence")
	status := models.TaskStatus("teleported")

	_, err := suite.service.Update(suite.ctx, requesterOf(suite.owner), task.ID, services.TaskInput{Status: &status})
	suite.True(services.IsKind(err, services.KindValidationFailed), "got %v", err)
}

func (suite *TaskServiceTestSuite) TestUpdate_Forbidden() {
	task := testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "Paint fence")

	_, err := suite.service.Update(suite.ctx, requesterOf(suite.stranger), task.ID, services.TaskInput{Title: strPtr("Mine now")})
	suite.True(services.IsKind(err, services.KindForbidden), "got %v", err)

	stored, err := suite.store.Tasks().FindByID(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal("Paint fence", stored.Title)
}

func (suite *TaskServiceTestSuite) TestDelete() {
	task := testutil.CreateTask(suite.T(), suite.store, suite.profile, suite.owner, "Paint fence")

	err := suite.service.Delete(suite.ctx, requesterOf(suite.stranger), task.ID)
	suite.True(services.IsKind(err, services.KindForbidden), "got %v", err)

	suite.Require().NoError(suite.service.Delete(suite.ctx, requesterOf(suite.admin), task.ID))

	err = suite.service.Delete(suite.ctx, requesterOf(suite.admin), task.ID)
	suite.True(services.IsKind(err, services.KindNotFound), "got %v", err)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
