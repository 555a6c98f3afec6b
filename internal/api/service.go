// The message contract lives next to this file: messages.go holds the
// request and response types of every method below, and codec.go the JSON
// codec they travel in. The server side registration is in
// internal/server/grpc/service.go.

package api

// ServiceName is the fully qualified gRPC service of every method below.
const ServiceName = "repoboard.v1.BoardService"

// Method names of ServiceName.
const (
	MethodPing               = "Ping"
	MethodLogin              = "Login"
	MethodRefreshToken       = "RefreshToken"
	MethodMe                 = "Me"
	MethodListWidgetTypes    = "ListWidgetTypes"
	MethodCreateBoard        = "CreateBoard"
	MethodGetBoard           = "GetBoard"
	MethodGetBoardByRepo     = "GetBoardByRepo"
	MethodListBoards         = "ListBoards"
	MethodUpdateBoard        = "UpdateBoard"
	MethodCreateWidget       = "CreateWidget"
	MethodListWidgets        = "ListWidgets"
	MethodPatchWidget        = "PatchWidget"
	MethodDeleteWidget       = "DeleteWidget"
	MethodVote               = "Vote"
	MethodPollResults        = "PollResults"
	MethodAddComment         = "AddComment"
	MethodListComments       = "ListComments"
	MethodDeleteComment      = "DeleteComment"
	MethodSetPin             = "SetPin"
	MethodListPins           = "ListPins"
	MethodRemovePin          = "RemovePin"
	MethodRequestImageUpload = "RequestImageUpload"
	MethodConfirmImageUpload = "ConfirmImageUpload"
	MethodImageURL           = "ImageURL"
	MethodStarCount          = "StarCount"
	MethodListRepos          = "ListRepos"
	MethodCanWrite           = "CanWrite"
	MethodWatchBoard         = "WatchBoard"
)

// FullMethod returns the gRPC path of method, e.g. "/repoboard.v1.BoardService/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
