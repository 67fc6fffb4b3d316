package dispatch

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/dispatchlabs/inference-gateway/internal/auditlog"
	"github.com/dispatchlabs/inference-gateway/internal/metrics"
)

// SubmitEmbedding runs the embedding dispatch path: enqueue and await the
// single reply. No caching applies to embeddings — the response cache is
// scoped to buffered chat only.
func (e *Engine) SubmitEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	start := time.Now()
	env := &embeddingEnvelope{request: req, replyCh: make(chan embeddingReply, 1)}
	if err := e.queue.push(env); err != nil {
		return nil, errInternal("enqueue embedding request: %v", err)
	}

	reply := <-env.replyCh
	metrics.RequestDuration.WithLabelValues("embedding", req.Model).Observe(time.Since(start).Seconds())
	if reply.err != nil {
		metrics.RequestsTotal.WithLabelValues("embedding", req.Model, "error").Inc()
		return nil, reply.err
	}
	metrics.RequestsTotal.WithLabelValues("embedding", req.Model, "success").Inc()
	e.audit.Write(ctx, auditlog.Entry{Kind: "dispatch", Capability: "embedding", Model: req.Model, Latency: time.Since(start)})
	return reply.response, nil
}

func (e *Engine) runEmbedding(ctx context.Context, env *embeddingEnvelope) {
	handle, ok := e.embedding.Lookup(env.request.Model)
	if !ok {
		env.replyCh <- embeddingReply{err: errNotFound("embedding model %s not found", env.request.Model)}
		return
	}

	vectors, err := handle.Embed(ctx, env.request.Input)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("embedding").Inc()
		env.replyCh <- embeddingReply{err: errBadRequest("embedding backend failure: %v", err)}
		return
	}

	data := make([]EmbeddingObject, len(vectors))
	for i, v := range vectors {
		data[i] = EmbeddingObject{Object: "embedding", Index: i, Embedding: v}
	}

	env.replyCh <- embeddingReply{response: &EmbeddingResponse{
		Object: "list",
		Data:   data,
		Model:  env.request.Model,
	}}
}

// SubmitImage runs the image dispatch path.
func (e *Engine) SubmitImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	start := time.Now()
	env := &imageEnvelope{request: req, replyCh: make(chan imageReply, 1)}
	if err := e.queue.push(env); err != nil {
		return nil, errInternal("enqueue image request: %v", err)
	}

	reply := <-env.replyCh
	metrics.RequestDuration.WithLabelValues("image", req.Model).Observe(time.Since(start).Seconds())
	if reply.err != nil {
		metrics.RequestsTotal.WithLabelValues("image", req.Model, "error").Inc()
		return nil, reply.err
	}
	metrics.RequestsTotal.WithLabelValues("image", req.Model, "success").Inc()
	e.audit.Write(ctx, auditlog.Entry{Kind: "dispatch", Capability: "image", Model: req.Model, Latency: time.Since(start)})

	data := make([]ImageDatum, len(reply.images))
	for i, img := range reply.images {
		data[i] = ImageDatum{B64JSON: base64.StdEncoding.EncodeToString(img)}
	}
	return &ImageResponse{Created: time.Now().Unix(), Data: data}, nil
}

func (e *Engine) runImage(ctx context.Context, env *imageEnvelope) {
	handle, ok := e.image.Lookup(env.request.Model)
	if !ok {
		env.replyCh <- imageReply{err: errNotFound("image model %s not found", env.request.Model)}
		return
	}

	images, err := handle.GenerateImages(ctx, env.request.Prompt, env.request.N, env.request.Size)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("image").Inc()
		env.replyCh <- imageReply{err: errBadRequest("image backend failure: %v", err)}
		return
	}
	env.replyCh <- imageReply{images: images}
}
