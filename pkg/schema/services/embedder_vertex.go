package services

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// Vertex AI text embedding endpoints accept at most 250 instances per
// Predict call.
const vertexBatchLimit = 250

// VertexEmbedder implements Embedder using Google Cloud Vertex AI text
// embedding models. Task types map directly onto the model's
// RETRIEVAL_QUERY / RETRIEVAL_DOCUMENT task parameter.
type VertexEmbedder struct {
	client   *aiplatform.PredictionClient
	endpoint string
}

// NewVertexEmbedder creates a Vertex AI embedder for the given project,
// location, and publisher model.
func NewVertexEmbedder(ctx context.Context, projectID, location, model string) (*VertexEmbedder, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for Vertex AI embeddings")
	}

	clientEndpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)
	client, err := aiplatform.NewPredictionClient(ctx, option.WithEndpoint(clientEndpoint))
	if err != nil {
		return nil, fmt.Errorf("create Vertex AI client: %w", err)
	}

	return &VertexEmbedder{
		client: client,
		endpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
			projectID, location, model),
	}, nil
}

// Close closes the underlying prediction client.
func (e *VertexEmbedder) Close() error {
	return e.client.Close()
}

// Embed generates an embedding for a single text.
func (e *VertexEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting into
// chunks under the Predict instance limit.
func (e *VertexEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var all [][]float32
	for start := 0; start < len(texts); start += vertexBatchLimit {
		end := min(start+vertexBatchLimit, len(texts))
		chunk, err := e.predict(ctx, texts[start:end], taskType)
		if err != nil {
			return nil, err
		}
		all = append(all, chunk...)
	}
	return all, nil
}

func (e *VertexEmbedder) predict(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	instances := make([]*structpb.Value, len(texts))
	for i, text := range texts {
		instance, err := structpb.NewStruct(map[string]interface{}{
			"content":   text,
			"task_type": string(taskType),
		})
		if err != nil {
			return nil, fmt.Errorf("build instance: %w", err)
		}
		instances[i] = structpb.NewStructValue(instance)
	}

	resp, err := e.client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  e.endpoint,
		Instances: instances,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex AI prediction: %w", err)
	}

	embeddings := make([][]float32, len(resp.Predictions))
	for i, prediction := range resp.Predictions {
		vec, err := parsePrediction(prediction)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// parsePrediction extracts the embeddings.values list from a Predict
// response value.
func parsePrediction(prediction *structpb.Value) ([]float32, error) {
	predStruct := prediction.GetStructValue()
	if predStruct == nil {
		return nil, fmt.Errorf("unexpected prediction format")
	}
	embStruct := predStruct.Fields["embeddings"].GetStructValue()
	if embStruct == nil {
		return nil, fmt.Errorf("no embeddings field in prediction")
	}
	valuesList := embStruct.Fields["values"].GetListValue()
	if valuesList == nil {
		return nil, fmt.Errorf("no values field in embeddings")
	}

	vec := make([]float32, len(valuesList.Values))
	for i, v := range valuesList.Values {
		vec[i] = float32(v.GetNumberValue())
	}
	return vec, nil
}
