package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/core/service"
	"github.com/rl1809/banko/internal/port"
)

type GRPCHandler struct {
	draws    *service.DrawService
	claims   *service.ClaimService
	gate     *service.AccessGate
	sessions port.SessionRepository
	log      *zap.Logger
}

var _ BankoServiceServer = (*GRPCHandler)(nil)

func NewGRPCHandler(
	draws *service.DrawService,
	claims *service.ClaimService,
	gate *service.AccessGate,
	sessions port.SessionRepository,
	log *zap.Logger,
) *GRPCHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCHandler{draws: draws, claims: claims, gate: gate, sessions: sessions, log: log}
}

func (h *GRPCHandler) Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := req.GetFields()
	principal := h.gate.Login(fields["username"].GetStringValue(), fields["password"].GetStringValue())
	if principal == domain.Anonymous {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	token, err := h.sessions.Create(ctx, principal)
	if err != nil {
		h.log.Error("create session", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return wrapperspb.String(token), nil
}

// Draw reports business failures in the response body rather than as
// status errors.
func (h *GRPCHandler) Draw(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if err := h.gate.Require(h.principal(ctx), domain.Admin); err != nil {
		return drawResponse(false, service.DenialMessage, nil)
	}

	n := int(req.GetValue())
	values, err := h.draws.Draw(ctx, n)
	if err != nil {
		var partial *service.PartialDrawError
		switch {
		case errors.As(err, &partial):
			h.log.Error("draw stopped part way", zap.Int("requested", n), zap.Ints("added", partial.Added), zap.Error(err))
			return drawResponse(false, "draw failed part way", partial.Added)
		case errors.Is(err, service.ErrInvalidCount), errors.Is(err, service.ErrPoolExhausted):
			return drawResponse(false, err.Error(), nil)
		default:
			h.log.Error("draw failed", zap.Int("requested", n), zap.Error(err))
			return drawResponse(false, "internal error", nil)
		}
	}

	return drawResponse(true, "numbers drawn", values)
}

func (h *GRPCHandler) ListDrawn(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	board, err := h.draws.Board(ctx)
	if err != nil {
		h.log.Error("load board", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	resp, err := structpb.NewStruct(map[string]interface{}{
		"numbers": intList(board.Chronological),
		"today":   intList(board.Today),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (h *GRPCHandler) ListClaims(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	claims, err := h.claims.List(ctx)
	if err != nil {
		h.log.Error("list claims", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	list := make([]interface{}, 0, len(claims))
	for _, c := range claims {
		list = append(list, map[string]interface{}{
			"id":          c.ID,
			"name":        c.ClaimantName,
			"type":        c.Type.String(),
			"recorded_at": c.RecordedAt.Format(time.RFC3339),
		})
	}
	resp, err := structpb.NewStruct(map[string]interface{}{"claims": list})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (h *GRPCHandler) principal(ctx context.Context) domain.Principal {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Anonymous
	}
	tokens := md.Get(SessionTokenKey)
	if len(tokens) == 0 {
		return domain.Anonymous
	}
	principal, err := h.sessions.Principal(ctx, tokens[0])
	if err != nil {
		h.log.Warn("session lookup failed", zap.Error(err))
		return domain.Anonymous
	}
	return principal
}

func drawResponse(success bool, message string, values []int) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"success": success,
		"message": message,
		"numbers": intList(values),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func intList(values []int) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// Ints decodes a list field of a response into ints.
func Ints(s *structpb.Struct, field string) []int {
	values := s.GetFields()[field].GetListValue().GetValues()
	out := make([]int, 0, len(values))
	for _, v := range values {
		out = append(out, int(v.GetNumberValue()))
	}
	return out
}
