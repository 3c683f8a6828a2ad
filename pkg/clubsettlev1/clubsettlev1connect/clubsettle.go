// Package clubsettlev1connect wires the clubsettle.v1 services to Connect
// handlers and clients.
package clubsettlev1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/mmynk/clubsettle/pkg/clubsettlev1"
)

const (
	SettlementServiceName = "clubsettle.v1.SettlementService"
	MemberServiceName     = "clubsettle.v1.MemberService"
	ScanServiceName       = "clubsettle.v1.ScanService"
)

const (
	SettlementServiceCreateSettlementProcedure  = "/clubsettle.v1.SettlementService/CreateSettlement"
	SettlementServiceGetSettlementProcedure     = "/clubsettle.v1.SettlementService/GetSettlement"
	SettlementServiceUpdateFeesProcedure        = "/clubsettle.v1.SettlementService/UpdateFees"
	SettlementServiceAddParticipantProcedure    = "/clubsettle.v1.SettlementService/AddParticipant"
	SettlementServiceRemoveParticipantProcedure = "/clubsettle.v1.SettlementService/RemoveParticipant"
	SettlementServiceSetExcludeFoodProcedure    = "/clubsettle.v1.SettlementService/SetExcludeFood"
	SettlementServiceRecomputeAmountsProcedure  = "/clubsettle.v1.SettlementService/RecomputeAmounts"
	SettlementServiceMarkPaidProcedure          = "/clubsettle.v1.SettlementService/MarkPaid"
	SettlementServiceMarkUnpaidProcedure        = "/clubsettle.v1.SettlementService/MarkUnpaid"
	SettlementServiceListUnpaidProcedure        = "/clubsettle.v1.SettlementService/ListUnpaid"
	SettlementServiceGetSummaryProcedure        = "/clubsettle.v1.SettlementService/GetSummary"
	SettlementServiceDeleteSettlementProcedure  = "/clubsettle.v1.SettlementService/DeleteSettlement"

	MemberServiceCreateMemberProcedure = "/clubsettle.v1.MemberService/CreateMember"
	MemberServiceListMembersProcedure  = "/clubsettle.v1.MemberService/ListMembers"

	ScanServiceScanReceiptProcedure    = "/clubsettle.v1.ScanService/ScanReceipt"
	ScanServiceScanScoreSheetProcedure = "/clubsettle.v1.ScanService/ScanScoreSheet"
)

// SettlementServiceHandler is implemented by the settlement service.
type SettlementServiceHandler interface {
	CreateSettlement(context.Context, *connect.Request[v1.CreateSettlementRequest]) (*connect.Response[v1.SettlementResponse], error)
	GetSettlement(context.Context, *connect.Request[v1.GetSettlementRequest]) (*connect.Response[v1.SettlementResponse], error)
	UpdateFees(context.Context, *connect.Request[v1.UpdateFeesRequest]) (*connect.Response[v1.SettlementResponse], error)
	AddParticipant(context.Context, *connect.Request[v1.AddParticipantRequest]) (*connect.Response[v1.SettlementResponse], error)
	RemoveParticipant(context.Context, *connect.Request[v1.RemoveParticipantRequest]) (*connect.Response[v1.SettlementResponse], error)
	SetExcludeFood(context.Context, *connect.Request[v1.SetExcludeFoodRequest]) (*connect.Response[v1.SettlementResponse], error)
	RecomputeAmounts(context.Context, *connect.Request[v1.RecomputeAmountsRequest]) (*connect.Response[v1.SettlementResponse], error)
	MarkPaid(context.Context, *connect.Request[v1.MarkPaidRequest]) (*connect.Response[v1.SettlementResponse], error)
	MarkUnpaid(context.Context, *connect.Request[v1.MarkUnpaidRequest]) (*connect.Response[v1.SettlementResponse], error)
	ListUnpaid(context.Context, *connect.Request[v1.ListUnpaidRequest]) (*connect.Response[v1.ListUnpaidResponse], error)
	GetSummary(context.Context, *connect.Request[v1.GetSummaryRequest]) (*connect.Response[v1.GetSummaryResponse], error)
	DeleteSettlement(context.Context, *connect.Request[v1.DeleteSettlementRequest]) (*connect.Response[v1.DeleteSettlementResponse], error)
}

// MemberServiceHandler is implemented by the member service.
type MemberServiceHandler interface {
	CreateMember(context.Context, *connect.Request[v1.CreateMemberRequest]) (*connect.Response[v1.CreateMemberResponse], error)
	ListMembers(context.Context, *connect.Request[v1.ListMembersRequest]) (*connect.Response[v1.ListMembersResponse], error)
}

// ScanServiceHandler is implemented by the scan service.
type ScanServiceHandler interface {
	ScanReceipt(context.Context, *connect.Request[v1.ScanRequest]) (*connect.Response[v1.ScanReceiptResponse], error)
	ScanScoreSheet(context.Context, *connect.Request[v1.ScanRequest]) (*connect.Response[v1.ScanScoreSheetResponse], error)
}

// routes dispatches the procedures of one service. The path prefix is
// what NewXServiceHandler returns for mounting on a mux.
type routes map[string]http.Handler

func (r routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

// NewSettlementServiceHandler builds an HTTP handler for the settlement service.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + SettlementServiceName + "/", routes{
		SettlementServiceCreateSettlementProcedure:  connect.NewUnaryHandler(SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts...),
		SettlementServiceGetSettlementProcedure:     connect.NewUnaryHandler(SettlementServiceGetSettlementProcedure, svc.GetSettlement, opts...),
		SettlementServiceUpdateFeesProcedure:        connect.NewUnaryHandler(SettlementServiceUpdateFeesProcedure, svc.UpdateFees, opts...),
		SettlementServiceAddParticipantProcedure:    connect.NewUnaryHandler(SettlementServiceAddParticipantProcedure, svc.AddParticipant, opts...),
		SettlementServiceRemoveParticipantProcedure: connect.NewUnaryHandler(SettlementServiceRemoveParticipantProcedure, svc.RemoveParticipant, opts...),
		SettlementServiceSetExcludeFoodProcedure:    connect.NewUnaryHandler(SettlementServiceSetExcludeFoodProcedure, svc.SetExcludeFood, opts...),
		SettlementServiceRecomputeAmountsProcedure:  connect.NewUnaryHandler(SettlementServiceRecomputeAmountsProcedure, svc.RecomputeAmounts, opts...),
		SettlementServiceMarkPaidProcedure:          connect.NewUnaryHandler(SettlementServiceMarkPaidProcedure, svc.MarkPaid, opts...),
		SettlementServiceMarkUnpaidProcedure:        connect.NewUnaryHandler(SettlementServiceMarkUnpaidProcedure, svc.MarkUnpaid, opts...),
		SettlementServiceListUnpaidProcedure:        connect.NewUnaryHandler(SettlementServiceListUnpaidProcedure, svc.ListUnpaid, opts...),
		SettlementServiceGetSummaryProcedure:        connect.NewUnaryHandler(SettlementServiceGetSummaryProcedure, svc.GetSummary, opts...),
		SettlementServiceDeleteSettlementProcedure:  connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...),
	}
}

// NewMemberServiceHandler builds an HTTP handler for the member service.
func NewMemberServiceHandler(svc MemberServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + MemberServiceName + "/", routes{
		MemberServiceCreateMemberProcedure: connect.NewUnaryHandler(MemberServiceCreateMemberProcedure, svc.CreateMember, opts...),
		MemberServiceListMembersProcedure:  connect.NewUnaryHandler(MemberServiceListMembersProcedure, svc.ListMembers, opts...),
	}
}

// NewScanServiceHandler builds an HTTP handler for the scan service.
func NewScanServiceHandler(svc ScanServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ScanServiceName + "/", routes{
		ScanServiceScanReceiptProcedure:    connect.NewUnaryHandler(ScanServiceScanReceiptProcedure, svc.ScanReceipt, opts...),
		ScanServiceScanScoreSheetProcedure: connect.NewUnaryHandler(ScanServiceScanScoreSheetProcedure, svc.ScanScoreSheet, opts...),
	}
}

// SettlementServiceClient calls the settlement service.
type SettlementServiceClient struct {
	createSettlement  *connect.Client[v1.CreateSettlementRequest, v1.SettlementResponse]
	getSettlement     *connect.Client[v1.GetSettlementRequest, v1.SettlementResponse]
	updateFees        *connect.Client[v1.UpdateFeesRequest, v1.SettlementResponse]
	addParticipant    *connect.Client[v1.AddParticipantRequest, v1.SettlementResponse]
	removeParticipant *connect.Client[v1.RemoveParticipantRequest, v1.SettlementResponse]
	setExcludeFood    *connect.Client[v1.SetExcludeFoodRequest, v1.SettlementResponse]
	recomputeAmounts  *connect.Client[v1.RecomputeAmountsRequest, v1.SettlementResponse]
	markPaid          *connect.Client[v1.MarkPaidRequest, v1.SettlementResponse]
	markUnpaid        *connect.Client[v1.MarkUnpaidRequest, v1.SettlementResponse]
	listUnpaid        *connect.Client[v1.ListUnpaidRequest, v1.ListUnpaidResponse]
	getSummary        *connect.Client[v1.GetSummaryRequest, v1.GetSummaryResponse]
	deleteSettlement  *connect.Client[v1.DeleteSettlementRequest, v1.DeleteSettlementResponse]
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}

// NewSettlementServiceClient creates a client for the service at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &SettlementServiceClient{
		createSettlement:  connect.NewClient[v1.CreateSettlementRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceCreateSettlementProcedure, opts...),
		getSettlement:     connect.NewClient[v1.GetSettlementRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceGetSettlementProcedure, opts...),
		updateFees:        connect.NewClient[v1.UpdateFeesRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceUpdateFeesProcedure, opts...),
		addParticipant:    connect.NewClient[v1.AddParticipantRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceAddParticipantProcedure, opts...),
		removeParticipant: connect.NewClient[v1.RemoveParticipantRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceRemoveParticipantProcedure, opts...),
		setExcludeFood:    connect.NewClient[v1.SetExcludeFoodRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceSetExcludeFoodProcedure, opts...),
		recomputeAmounts:  connect.NewClient[v1.RecomputeAmountsRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceRecomputeAmountsProcedure, opts...),
		markPaid:          connect.NewClient[v1.MarkPaidRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceMarkPaidProcedure, opts...),
		markUnpaid:        connect.NewClient[v1.MarkUnpaidRequest, v1.SettlementResponse](httpClient, baseURL+SettlementServiceMarkUnpaidProcedure, opts...),
		listUnpaid:        connect.NewClient[v1.ListUnpaidRequest, v1.ListUnpaidResponse](httpClient, baseURL+SettlementServiceListUnpaidProcedure, opts...),
		getSummary:        connect.NewClient[v1.GetSummaryRequest, v1.GetSummaryResponse](httpClient, baseURL+SettlementServiceGetSummaryProcedure, opts...),
		deleteSettlement:  connect.NewClient[v1.DeleteSettlementRequest, v1.DeleteSettlementResponse](httpClient, baseURL+SettlementServiceDeleteSettlementProcedure, opts...),
	}
}

func (c *SettlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[v1.CreateSettlementRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSettlement(ctx context.Context, req *connect.Request[v1.GetSettlementRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) UpdateFees(ctx context.Context, req *connect.Request[v1.UpdateFeesRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.updateFees.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) AddParticipant(ctx context.Context, req *connect.Request[v1.AddParticipantRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[v1.RemoveParticipantRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) SetExcludeFood(ctx context.Context, req *connect.Request[v1.SetExcludeFoodRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.setExcludeFood.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) RecomputeAmounts(ctx context.Context, req *connect.Request[v1.RecomputeAmountsRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.recomputeAmounts.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) MarkPaid(ctx context.Context, req *connect.Request[v1.MarkPaidRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) MarkUnpaid(ctx context.Context, req *connect.Request[v1.MarkUnpaidRequest]) (*connect.Response[v1.SettlementResponse], error) {
	return c.markUnpaid.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListUnpaid(ctx context.Context, req *connect.Request[v1.ListUnpaidRequest]) (*connect.Response[v1.ListUnpaidResponse], error) {
	return c.listUnpaid.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSummary(ctx context.Context, req *connect.Request[v1.GetSummaryRequest]) (*connect.Response[v1.GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[v1.DeleteSettlementRequest]) (*connect.Response[v1.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

// MemberServiceClient calls the member service.
type MemberServiceClient struct {
	createMember *connect.Client[v1.CreateMemberRequest, v1.CreateMemberResponse]
	listMembers  *connect.Client[v1.ListMembersRequest, v1.ListMembersResponse]
}

// NewMemberServiceClient creates a client for the service at baseURL.
func NewMemberServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MemberServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &MemberServiceClient{
		createMember: connect.NewClient[v1.CreateMemberRequest, v1.CreateMemberResponse](httpClient, baseURL+MemberServiceCreateMemberProcedure, opts...),
		listMembers:  connect.NewClient[v1.ListMembersRequest, v1.ListMembersResponse](httpClient, baseURL+MemberServiceListMembersProcedure, opts...),
	}
}

func (c *MemberServiceClient) CreateMember(ctx context.Context, req *connect.Request[v1.CreateMemberRequest]) (*connect.Response[v1.CreateMemberResponse], error) {
	return c.createMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) ListMembers(ctx context.Context, req *connect.Request[v1.ListMembersRequest]) (*connect.Response[v1.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

// ScanServiceClient calls the scan service.
type ScanServiceClient struct {
	scanReceipt    *connect.Client[v1.ScanRequest, v1.ScanReceiptResponse]
	scanScoreSheet *connect.Client[v1.ScanRequest, v1.ScanScoreSheetResponse]
}

// NewScanServiceClient creates a client for the service at baseURL.
func NewScanServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ScanServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ScanServiceClient{
		scanReceipt:    connect.NewClient[v1.ScanRequest, v1.ScanReceiptResponse](httpClient, baseURL+ScanServiceScanReceiptProcedure, opts...),
		scanScoreSheet: connect.NewClient[v1.ScanRequest, v1.ScanScoreSheetResponse](httpClient, baseURL+ScanServiceScanScoreSheetProcedure, opts...),
	}
}

func (c *ScanServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[v1.ScanRequest]) (*connect.Response[v1.ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}

func (c *ScanServiceClient) ScanScoreSheet(ctx context.Context, req *connect.Request[v1.ScanRequest]) (*connect.Response[v1.ScanScoreSheetResponse], error) {
	return c.scanScoreSheet.CallUnary(ctx, req)
}
