package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/bookkita-api/internal/domain"
)

// OtpRepo provides typed DynamoDB operations for the otp_codes table.
type OtpRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOtpRepo(client *dynamodb.Client, tableName string) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName}
}

// Put inserts a new code. The condition rejects id collisions so a record can
// never be silently overwritten.
func (r *OtpRepo) Put(ctx context.Context, o *domain.OtpCode) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(otp_id)"),
	})
	return err
}

// GetActive returns the unused, non-expired record matching (email, code,
// purpose), or ErrInvalidCode when there is none.
func (r *OtpRepo) GetActive(ctx context.Context, email, code, purpose string) (*domain.OtpCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("code = :c AND purpose = :p AND used = :f AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":   &types.AttributeValueMemberS{Value: email},
			":c":   &types.AttributeValueMemberS{Value: code},
			":p":   &types.AttributeValueMemberS{Value: purpose},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp code not found: %w", domain.ErrInvalidCode)
	}
	var o domain.OtpCode
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetActiveByCode looks up an unused, non-expired record by the code value
// alone. Magic-link tokens are long and random, so the value is a key.
func (r *OtpRepo) GetActiveByCode(ctx context.Context, code, purpose string) (*domain.OtpCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("code-index"),
		KeyConditionExpression: aws.String("code = :c"),
		FilterExpression:       aws.String("purpose = :p AND used = :f AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: code},
			":p":   &types.AttributeValueMemberS{Value: purpose},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("link token not found: %w", domain.ErrInvalidCode)
	}
	var o domain.OtpCode
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkUsed flips used to true. The condition makes consumption single-shot:
// a second caller racing on the same code gets ErrInvalidCode, not success.
func (r *OtpRepo) MarkUsed(ctx context.Context, otpID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("otp_id", otpID),
		UpdateExpression:    aws.String("SET used = :t"),
		ConditionExpression: aws.String("used = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("otp code already used: %w", domain.ErrInvalidCode)
		}
		return err
	}
	return nil
}

// DeleteUnusedByEmail removes every live code for the email and purpose.
// Called before issuing a replacement so at most one code is outstanding.
func (r *OtpRepo) DeleteUnusedByEmail(ctx context.Context, email, purpose string) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("purpose = :p AND used = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
			":p": &types.AttributeValueMemberS{Value: purpose},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return err
	}
	var firstErr error
	for _, item := range out.Items {
		idAttr, ok := item["otp_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if err := r.delete(ctx, idAttr.Value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PurgeExpired scans for codes past their expiry and deletes them. DynamoDB
// TTL eventually removes them anyway; this keeps the table tidy between
// TTL sweeps, matching the opportunistic cleanup done during verification.
func (r *OtpRepo) PurgeExpired(ctx context.Context) error {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
		ProjectionExpression: aws.String("otp_id"),
	})
	if err != nil {
		return err
	}
	for _, item := range out.Items {
		idAttr, ok := item["otp_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if err := r.delete(ctx, idAttr.Value); err != nil {
			slog.Warn("failed to purge expired otp code", "otp_id", idAttr.Value, "err", err)
		}
	}
	return nil
}

func (r *OtpRepo) delete(ctx context.Context, otpID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("otp_id", otpID),
	})
	return err
}
