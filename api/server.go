package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alex-pricope/online-voting-system/api/controllers"
	"github.com/alex-pricope/online-voting-system/api/transport"
	"github.com/alex-pricope/online-voting-system/auth"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/scheduler"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

type stores struct {
	polls storage.PollStorage
	votes storage.VoteStorage
	users storage.UserStorage
	close func(context.Context)
}

func (s *Server) Start() {
	ctx := context.Background()
	clock := clockwork.NewRealClock()

	st, err := s.openStores(ctx)
	if err != nil {
		logging.Log.Errorf("failed to open storage: %v", err)
		panic("failed to open storage")
	}
	defer st.close(ctx)

	sweeper := scheduler.NewStatusScheduler(st.polls, clock, s.config.SchedulerInterval)
	if os.Getenv("APP_ROLE") == "sweeper" {
		startSweeperLambda(sweeper)
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     s.config.RedisAddr,
		Password: s.config.RedisPassword,
		DB:       s.config.RedisDB,
	})
	defer redisClient.Close()

	// Create services
	sessions := &storage.RedisSessionStorage{Client: redisClient}
	tokens := auth.NewTokenIssuer(s.config.JWTSecret, s.config.SessionTTL, clock)
	authService := auth.NewService(st.users, sessions, tokens, clock, auth.Config{
		SessionTTL:      s.config.SessionTTL,
		BootstrapAdmins: s.config.BootstrapAdmins,
	})
	pollService := voting.NewPollService(st.polls, clock)
	voteService := voting.NewVoteService(st.polls, st.votes, clock)

	r := transport.NewRouter(gin.DebugMode, s.config.CORSOrigin)

	//Register controllers
	controllers.NewPollController(pollService, voteService, authService).RegisterRoutes(r)
	controllers.NewVotingController(voteService, authService).RegisterRoutes(r)
	controllers.NewAuthController(authService).RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		s.startLocal(r, sweeper)
	} else {
		startLambda(r)
	}
}

func (s *Server) openStores(ctx context.Context) (*stores, error) {
	switch s.config.Driver {
	case StorageDriverDynamo:
		var opts []func(*awsconfig.LoadOptions) error
		if s.config.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s.config.Region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}

		dynamoClient := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if s.config.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.config.Endpoint)
			}
		})
		logging.Log.Infof("STORAGE: using DynamoDB tables %s, %s, %s", s.config.TableNamePolls, s.config.TableNameVotes, s.config.TableNameUsers)

		return &stores{
			polls: &storage.DynamoPollStorage{Client: dynamoClient, TableName: s.config.TableNamePolls},
			votes: &storage.DynamoVoteStorage{
				Client:         dynamoClient,
				TableName:      s.config.TableNameVotes,
				PollsTableName: s.config.TableNamePolls,
			},
			users: &storage.DynamoUserStorage{Client: dynamoClient, TableName: s.config.TableNameUsers},
			close: func(context.Context) {},
		}, nil

	case StorageDriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.config.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(s.config.MongoDatabase)
		if err := storage.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("create MongoDB indexes: %w", err)
		}
		logging.Log.Infof("STORAGE: using MongoDB database %s", s.config.MongoDatabase)

		polls := db.Collection(storage.MongoCollectionPolls)
		return &stores{
			polls: &storage.MongoPollStorage{Collection: polls},
			votes: &storage.MongoVoteStorage{Client: client, Votes: db.Collection(storage.MongoCollectionVotes), Polls: polls},
			users: &storage.MongoUserStorage{Collection: db.Collection(storage.MongoCollectionUsers)},
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					logging.Log.Errorf("STORAGE: failed to disconnect from MongoDB: %v", err)
				}
			},
		}, nil

	case StorageDriverMemory:
		logging.Log.Warn("STORAGE: using in-memory storage, data is lost on restart")
		polls := storage.NewMemoryPollStorage()
		return &stores{
			polls: polls,
			votes: storage.NewMemoryVoteStorage(polls),
			users: storage.NewMemoryUserStorage(),
			close: func(context.Context) {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", s.config.Driver)
}

// startLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// startSweeperLambda runs one status sweep per scheduled EventBridge event.
func startSweeperLambda(sweeper *scheduler.StatusScheduler) {
	handler := func(ctx context.Context, event events.CloudWatchEvent) (scheduler.SweepResult, error) {
		logging.Log.Infof("SWEEP: scheduled event %s at %s", event.ID, event.Time.Format(time.RFC3339))
		return sweeper.RunOnce(ctx)
	}

	logging.Log.Info("Starting sweeper lambda")
	lambda.Start(handler)
}

// startLocal runs a normal HTTP server with the status scheduler in process and
// shuts both down on SIGINT or SIGTERM.
func (s *Server) startLocal(engine *gin.Engine, sweeper *scheduler.StatusScheduler) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.config.SchedulerEnabled {
		if err := sweeper.Start(ctx); err != nil {
			logging.Log.Errorf("failed to start scheduler: %v", err)
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: engine,
	}

	go func() {
		logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", s.config.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Log.Errorf("Server forced to shutdown: %v", err)
	}
}
