package plan

import (
	"net/http/httptest"
	"testing"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/race"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func testApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/races"), svc)
	return app
}

func TestGetPlanEndpoint(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	expectGetRace(mock, 1, 68)
	expectFreshBuild(mock)

	svc := NewService(race.NewService(mock), nil, nil, testConfig())
	app := testApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/races/race-1/plan", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGetPlanMissingBodyWeight(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	expectGetRace(mock, 1, 0)

	svc := NewService(race.NewService(mock), nil, nil, testConfig())
	app := testApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/races/race-1/plan", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestFatigueCurveEndpointOverrides(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	expectGetRace(mock, 1, 68)

	svc := NewService(race.NewService(mock), nil, nil, testConfig())
	app := testApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/races/race-1/fatigue-curve?pace=10&factor=5", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAnalysisEndpointWithoutResult(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	expectGetRace(mock, 1, 68)
	expectFreshBuild(mock)
	mock.ExpectQuery(`SELECT records FROM race_activities`).
		WithArgs("race-1", "result").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(race.NewService(mock), nil, nil, testConfig())
	app := testApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/races/race-1/analysis", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
