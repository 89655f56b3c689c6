package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
)

var ErrAlreadyRedeemed = errors.New("challenge already redeemed")

// OTPRedemptionRepository records consumed challenge tokens.
type OTPRedemptionRepository interface {
	// Redeem marks signature as consumed until expiresAt. It returns
	// ErrAlreadyRedeemed if the signature was consumed before.
	Redeem(ctx context.Context, signature string, expiresAt time.Time) error
}

const otpRedemptionCollection = "otp_redemptions"

type otpRedemptionMongoRepository struct {
	db *mongo.Database
}

// NewOTPRedemptionMongoRepository creates a new MongoDB repository for redeemed challenges.
func NewOTPRedemptionMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) OTPRedemptionRepository {
	collection := db.Collection(otpRedemptionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "signature", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create otp redemption indexes")
	}

	return &otpRedemptionMongoRepository{db: db}
}

func (r *otpRedemptionMongoRepository) Redeem(ctx context.Context, signature string, expiresAt time.Time) error {
	_, err := r.db.Collection(otpRedemptionCollection).InsertOne(ctx, &model.OTPRedemption{
		Signature: signature,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyRedeemed
		}
		return err
	}

	return nil
}

const otpRedemptionKeyPrefix = "otp:redeemed:"

type otpRedemptionRedisRepository struct {
	client redis.UniversalClient
}

// NewOTPRedemptionRedisRepository creates a Redis backed repository for redeemed challenges.
func NewOTPRedemptionRedisRepository(client redis.UniversalClient) OTPRedemptionRepository {
	return &otpRedemptionRedisRepository{client: client}
}

func (r *otpRedemptionRedisRepository) Redeem(ctx context.Context, signature string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	ok, err := r.client.SetNX(ctx, otpRedemptionKeyPrefix+signature, 1, ttl).Result()
	if err != nil {
		return err
	}

	if !ok {
		return ErrAlreadyRedeemed
	}

	return nil
}
