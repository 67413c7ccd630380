package store

import (
	"context"
	"fmt"

	"adforge/internal/domain/entity"
	"adforge/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// pointNamespace derives stable point IDs so re-indexing a campaign overwrites it.
var pointNamespace = uuid.MustParse("6f1c3b0e-2d4a-4c1e-9a57-0b8e5f6d2c41")

// QdrantIndex stores one vector per saved campaign, filtered by owner on search.
type QdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	log            *logger.Logger
}

func NewQdrantIndex(client *qdrant.Client, collectionName string, log *logger.Logger) *QdrantIndex {
	if log == nil {
		log = logger.Nop()
	}
	return &QdrantIndex{
		client:         client,
		collectionName: collectionName,
		log:            log.With("component", "qdrant"),
	}
}

// pointID length-prefixes the owner so no owner/id pair can alias another.
func pointID(ownerID, campaignID string) *qdrant.PointId {
	name := fmt.Sprintf("%d:%s/%s", len(ownerID), ownerID, campaignID)
	return qdrant.NewIDUUID(uuid.NewSHA1(pointNamespace, []byte(name)).String())
}

func (s *QdrantIndex) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	// Every search filters on owner_id.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "owner_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		s.log.Warn("could not create owner_id index (might already exist)", "error", err)
	}
	return nil
}

func (s *QdrantIndex) Upsert(ctx context.Context, rec *entity.CampaignRecord, summary string, vector []float32) error {
	payload := map[string]any{
		"owner_id":      rec.OwnerID,
		"campaign_id":   rec.ID,
		"campaign_type": string(rec.CampaignType),
		"summary":       summary,
		"created_at":    rec.CreatedAt.Unix(),
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      pointID(rec.OwnerID, rec.ID),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	return err
}

func (s *QdrantIndex) Search(ctx context.Context, ownerID string, vector []float32, limit int, excludeID string) ([]entity.SimilarCampaign, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("owner_id", ownerID)},
	}
	if excludeID != "" {
		filter.MustNot = []*qdrant.Condition{qdrant.NewMatch("campaign_id", excludeID)}
	}

	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]entity.SimilarCampaign, 0, len(res))
	for _, hit := range res {
		p := hit.Payload
		out = append(out, entity.SimilarCampaign{
			CampaignID:   p["campaign_id"].GetStringValue(),
			CampaignType: entity.CampaignType(p["campaign_type"].GetStringValue()),
			Summary:      p["summary"].GetStringValue(),
			Score:        hit.Score,
		})
	}
	return out, nil
}

func (s *QdrantIndex) Remove(ctx context.Context, ownerID, id string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointID(ownerID, id)),
	})
	return err
}
