package reference

import (
	"context"
	"sync"
	"time"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/constvars"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const cacheExpiration = 6 * time.Hour

type referenceUsecase struct {
	ReferenceRepository contracts.ReferenceRepository
	RedisRepository     contracts.RedisRepository
	Log                 *zap.Logger
}

var (
	referenceUsecaseInstance contracts.ReferenceUsecase
	onceReferenceUsecase     sync.Once
)

func NewReferenceUsecase(
	referenceRepository contracts.ReferenceRepository,
	redisRepository contracts.RedisRepository,
	logger *zap.Logger,
) contracts.ReferenceUsecase {
	onceReferenceUsecase.Do(func() {
		referenceUsecaseInstance = &referenceUsecase{
			ReferenceRepository: referenceRepository,
			RedisRepository:     redisRepository,
			Log:                 logger,
		}
	})
	return referenceUsecaseInstance
}

// BuildReferenceSet assembles the lookup snapshot handed to rule handlers.
// Codes and establishments are cached in redis so repeated runs do not hit
// mongo for data that changes on an import cadence.
func (uc *referenceUsecase) BuildReferenceSet(ctx context.Context) (models.ReferenceSet, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("referenceUsecase.BuildReferenceSet called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	codes, err := uc.loadCodes(ctx, requestID)
	if err != nil {
		return models.ReferenceSet{}, err
	}

	establishments, err := uc.loadEstablishments(ctx, requestID)
	if err != nil {
		return models.ReferenceSet{}, err
	}

	refs := models.ReferenceSet{
		CodeLeaf:          make(map[string]string, len(codes)),
		CodeGroup:         make(map[string]string, len(codes)),
		GMFEstablishments: make(map[string]bool, len(establishments)),
	}
	for _, code := range codes {
		refs.CodeLeaf[code.Code] = code.Leaf
		refs.CodeGroup[code.Code] = code.Level2Group
	}
	for _, establishment := range establishments {
		if establishment.GMF != nil {
			refs.GMFEstablishments[establishment.Numero] = *establishment.GMF
		}
	}
	return refs, nil
}

func (uc *referenceUsecase) loadCodes(ctx context.Context, requestID string) ([]models.Code, error) {
	cached, err := uc.RedisRepository.Get(ctx, constvars.RedisKeyCodeCatalog)
	if err != nil {
		uc.Log.Error("referenceUsecase.loadCodes error retrieving code catalog from redis",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	var codes []models.Code
	if cached != "" {
		if err := json.Unmarshal([]byte(cached), &codes); err == nil {
			return codes, nil
		}
		// Corrupt cache entries fall through to the repository.
		_ = uc.RedisRepository.Delete(ctx, constvars.RedisKeyCodeCatalog)
	}

	codes, err = uc.ReferenceRepository.FindAllCodes(ctx)
	if err != nil {
		uc.Log.Error("referenceUsecase.loadCodes error fetching codes from repository",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.RedisRepository.Set(ctx, constvars.RedisKeyCodeCatalog, codes, cacheExpiration); err != nil {
		uc.Log.Error("referenceUsecase.loadCodes error caching codes to redis",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
	return codes, nil
}

func (uc *referenceUsecase) loadEstablishments(ctx context.Context, requestID string) ([]models.Establishment, error) {
	cached, err := uc.RedisRepository.Get(ctx, constvars.RedisKeyEstablishmentList)
	if err != nil {
		uc.Log.Error("referenceUsecase.loadEstablishments error retrieving establishments from redis",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	var establishments []models.Establishment
	if cached != "" {
		if err := json.Unmarshal([]byte(cached), &establishments); err == nil {
			return establishments, nil
		}
		_ = uc.RedisRepository.Delete(ctx, constvars.RedisKeyEstablishmentList)
	}

	establishments, err = uc.ReferenceRepository.FindAllEstablishments(ctx)
	if err != nil {
		uc.Log.Error("referenceUsecase.loadEstablishments error fetching establishments from repository",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.RedisRepository.Set(ctx, constvars.RedisKeyEstablishmentList, establishments, cacheExpiration); err != nil {
		uc.Log.Error("referenceUsecase.loadEstablishments error caching establishments to redis",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
	return establishments, nil
}
