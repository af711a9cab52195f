//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcadapter "github.com/aveongye/cst-case-study/internal/adapter/grpc"
	"github.com/aveongye/cst-case-study/internal/adapter/repository/postgres"
	"github.com/aveongye/cst-case-study/internal/domain"
	"github.com/aveongye/cst-case-study/internal/usecase/seeder"
)

var (
	db         *postgres.DB
	grpcClient *grpcadapter.Client
	grpcConn   *grpc.ClientConn
)

// TestMain connects to the database and to a running server started with
// CST_STORAGE=postgres against the same database.
func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Connect to Database
	var err error
	db, err = postgres.Connect(ctx, getDBConnectionString(), 5, zap.NewNop())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	if err := db.Migrate(ctx); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	// 2. Connect to gRPC Server
	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}
	grpcClient = grpcadapter.NewClient(grpcConn)

	// 3. Self-Healing Setup: make sure the demo fund exists
	demoSeeder := seeder.NewDemoSeeder(postgres.NewCashflowRepository(db), domain.DefaultCurrencyPolicy, nil)
	if err := demoSeeder.Seed(ctx); err != nil {
		panic(fmt.Sprintf("Failed to seed demo fund: %v", err))
	}

	code := m.Run()

	grpcConn.Close()
	db.Close()
	os.Exit(code)
}

func getAuthContext() context.Context {
	md := metadata.New(map[string]string{
		"authorization": "dev-token",
	})
	return metadata.NewOutgoingContext(context.Background(), md)
}

// getDBConnectionString returns the database connection string from environment or defaults
func getDBConnectionString() string {
	if connStr := os.Getenv("CST_POSTGRES_URL"); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "casestudy"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	addr := os.Getenv("GRPC_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	return addr
}

// TestEndToEndFlow runs the demo fund through the server and checks the stored run
func TestEndToEndFlow(t *testing.T) {
	ctx := getAuthContext()

	doc, err := grpcClient.RunFundAnalytics(ctx, seeder.DemoFundName)
	require.NoError(t, err)

	fields := doc.GetFields()
	assert.Equal(t, seeder.DemoFundName, fields["fund"].GetStringValue())
	assert.Equal(t, "EUR", fields["base_currency"].GetStringValue())
	assert.Empty(t, fields["failures"].GetListValue().GetValues())

	rates := fields["currency_irrs"].GetListValue().GetValues()
	require.Len(t, rates, 3)
	assert.NotNil(t, fields["fund_irr"].GetStructValue(), "fund-level rate is solved on base amounts")

	// EUR is the base currency and is not hedged
	trades := fields["fx_forwards"].GetListValue().GetValues()
	require.Len(t, trades, 40)
	for _, v := range trades {
		pair := v.GetStructValue().GetFields()["currency_pair"].GetStringValue()
		assert.Contains(t, []string{"GBP/EUR", "USD/EUR"}, pair)
	}
	first := trades[0].GetStructValue().GetFields()
	assert.Equal(t, "GBP/EUR", first["currency_pair"].GetStringValue())
	assert.Equal(t, "100000000.00", first["notional_amount"].GetStringValue())

	runID, err := uuid.Parse(fields["run_id"].GetStringValue())
	require.NoError(t, err)

	t.Run("run is persisted", func(t *testing.T) {
		var fund string
		err := db.QueryRowContext(context.Background(), `SELECT fund FROM analytics_runs WHERE id = $1`, runID).Scan(&fund)
		require.NoError(t, err)
		assert.Equal(t, seeder.DemoFundName, fund)

		counts := map[string]int{
			"currency_irrs":     3,
			"nav_points":        59,
			"fx_forward_trades": 40,
			"scope_failures":    0,
		}
		for table, want := range counts {
			var got int
			query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE run_id = $1`, table)
			require.NoError(t, db.QueryRowContext(context.Background(), query, runID).Scan(&got))
			assert.Equal(t, want, got, table)
		}
	})

	t.Run("repeated runs propose the same trades", func(t *testing.T) {
		again, err := grpcClient.RunFundAnalytics(ctx, seeder.DemoFundName)
		require.NoError(t, err)

		againTrades := again.GetFields()["fx_forwards"].GetListValue().GetValues()
		require.Len(t, againTrades, len(trades))
		for i := range trades {
			assert.Equal(t,
				trades[i].GetStructValue().GetFields()["id"].GetStringValue(),
				againTrades[i].GetStructValue().GetFields()["id"].GetStringValue())
		}
		assert.NotEqual(t, runID.String(), again.GetFields()["run_id"].GetStringValue())
	})
}

func TestListFunds(t *testing.T) {
	funds, err := grpcClient.ListFunds(getAuthContext())

	require.NoError(t, err)
	assert.Contains(t, funds, seeder.DemoFundName)
}

func TestNegativeScenarios(t *testing.T) {
	t.Run("UnknownFund", func(t *testing.T) {
		_, err := grpcClient.RunFundAnalytics(getAuthContext(), "Fund "+uuid.NewString())
		require.Error(t, err)
		assert.Equal(t, codes.NotFound, status.Code(err), "Error code should be NotFound")
	})

	t.Run("MissingToken", func(t *testing.T) {
		_, err := grpcClient.RunFundAnalytics(context.Background(), seeder.DemoFundName)
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err), "Error code should be Unauthenticated")
	})
}
