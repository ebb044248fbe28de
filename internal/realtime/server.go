package realtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taskboard/taskboard/internal/database"
	"github.com/taskboard/taskboard/internal/stats"
	"github.com/taskboard/taskboard/internal/types"
	"github.com/teris-io/shortid"
)

// Server owns the realtime engine: the session registry, the room registry,
// the broadcaster and the notification synchronizer, wired together
// explicitly rather than through package-level state.
type Server struct {
	log           *log.Logger
	db            database.TaskboardRepository
	stats         stats.StatsProvider
	sessions      *SessionRegistry
	rooms         *RoomRegistry
	broadcaster   *Broadcaster
	notifications *NotificationSynchronizer
}

func NewServer(logger *log.Logger, db database.TaskboardRepository, st stats.StatsProvider) (*Server, error) {
	s := &Server{
		log:   logger,
		db:    db,
		stats: st,
	}

	s.sessions = NewSessionRegistry()
	s.rooms = NewRoomRegistry(st)
	s.broadcaster = NewBroadcaster(logger, s.rooms, s.sessions, st, s.Release)
	s.notifications = NewNotificationSynchronizer(logger, db, s.broadcaster)

	st.RegisterMetric(stats.NumSessions)
	st.RegisterMetric(stats.NumRooms)
	st.RegisterMetric(stats.EventsPublished)
	st.RegisterMetric(stats.DeliveryFailures)

	return s, nil
}

func (s *Server) Run() {
	s.broadcaster.Run()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Println("closing sessions")
	for _, sess := range s.sessions.All() {
		s.Release(sess)
	}

	return s.broadcaster.Stop(ctx)
}

// Publish hands a domain event to the broadcaster. This is the entry point
// the persistence side calls after a write commits.
func (s *Server) Publish(evt DomainEvent) {
	s.broadcaster.Publish(evt)
}

func (s *Server) Notifications() *NotificationSynchronizer {
	return s.notifications
}

// Admit registers a new session for conn. A zero user id admits the session
// as anonymous; an identified session is auto-joined to its personal room.
// The caller starts the read and write pumps.
func (s *Server) Admit(conn *websocket.Conn, user types.User) (*Session, error) {
	sid, err := shortid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		id:          sid,
		user:        user,
		conn:        conn,
		srv:         s,
		log:         s.log,
		send:        make(chan *ServerMessage, 256),
		stop:        make(chan struct{}),
		connectedAt: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}

	s.sessions.Add(sess)
	s.stats.Incr(stats.NumSessions)

	if !sess.Anonymous() {
		s.rooms.JoinIfLive(sess.id, UserRoom(user.Id), s.sessionLive)
	}

	s.log.Printf("admitted session %q for user %d", sess.id, user.Id)
	return sess, nil
}

// Release removes the session from the registry and from every room, and
// cancels its in-flight work. After Release returns no publish targets the
// session. Idempotent: a disconnect racing a delivery failure is harmless.
// The registry entry goes first: a join racing the release fails its
// liveness check once the entry is gone, and the membership sweep below
// catches any join that slipped in before that.
func (s *Server) Release(sess *Session) {
	sess.cancel()
	if removed := s.sessions.Remove(sess.id); removed != nil {
		s.stats.Decr(stats.NumSessions)
		s.log.Printf("released session %q", sess.id)
	}
	s.rooms.DropSession(sess.id)
	sess.stopSession()
}

func (s *Server) sessionLive(id string) bool {
	return s.sessions.Get(id) != nil
}

func (s *Server) handleMessage(sess *Session, msg *ClientMessage) {
	switch {
	case msg.Join != nil:
		s.handleJoin(sess, msg)
	case msg.Leave != nil:
		s.handleLeave(sess, msg)
	case msg.AddComment != nil:
		s.handleAddComment(sess, msg)
	case msg.UpdateComment != nil:
		s.handleUpdateComment(sess, msg)
	case msg.DeleteComment != nil:
		s.handleDeleteComment(sess, msg)
	case msg.MarkNotificationRead != nil:
		s.handleMarkNotificationRead(sess, msg)
	case msg.MarkAllNotificationsRead != nil:
		s.handleMarkAllNotificationsRead(sess, msg)
	default:
		sess.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

func (s *Server) handleJoin(sess *Session, msg *ClientMessage) {
	key, err := ParseRoomKey(msg.Join.Room)
	if err != nil {
		s.log.Println("join:", err)
		sess.queueMessage(ErrBadRoomKey(msg.Id))
		return
	}

	if !s.rooms.JoinIfLive(sess.id, key, s.sessionLive) {
		// the session was released while the join was in flight
		return
	}
	sess.queueMessage(NoErrOK(msg.Id, nil))
}

func (s *Server) handleLeave(sess *Session, msg *ClientMessage) {
	key, err := ParseRoomKey(msg.Leave.Room)
	if err != nil {
		s.log.Println("leave:", err)
		sess.queueMessage(ErrBadRoomKey(msg.Id))
		return
	}

	s.rooms.Leave(sess.id, key)
	sess.queueMessage(NoErrOK(msg.Id, nil))
}

func (s *Server) handleAddComment(sess *Session, msg *ClientMessage) {
	if sess.Anonymous() {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	comment, recipients, err := s.db.CreateComment(sess.ctx, database.CreateCommentParams{
		TaskId:    msg.AddComment.TaskId,
		AccountId: sess.user.Id,
		Content:   msg.AddComment.Content,
	})
	if err != nil {
		// the write did not commit, so nothing is broadcast
		s.log.Println("CreateComment:", err)
		sess.queueMessage(ErrInternalError(msg.Id))
		return
	}

	wire := commentToWire(comment)
	sess.queueMessage(NoErrOK(msg.Id, wire))
	s.broadcaster.Publish(NewCommentAdded(wire))

	for _, userId := range recipients {
		if err := s.notifications.OnNotificationMutated(sess.ctx, userId); err != nil {
			s.log.Println("OnNotificationMutated:", err)
		}
	}
}

func (s *Server) handleUpdateComment(sess *Session, msg *ClientMessage) {
	if sess.Anonymous() {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	cur, err := s.db.GetCommentById(sess.ctx, msg.UpdateComment.CommentId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sess.queueMessage(ErrNotFound(msg.Id))
		} else {
			s.log.Println("GetCommentById:", err)
			sess.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if cur.AccountId != sess.user.Id {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	updated, err := s.db.UpdateComment(sess.ctx, database.UpdateCommentParams{
		CommentId: msg.UpdateComment.CommentId,
		Content:   msg.UpdateComment.Content,
	})
	if err != nil {
		s.log.Println("UpdateComment:", err)
		sess.queueMessage(ErrInternalError(msg.Id))
		return
	}
	updated.Username = cur.Username

	wire := commentToWire(updated)
	sess.queueMessage(NoErrOK(msg.Id, wire))
	s.broadcaster.Publish(NewCommentUpdated(wire))
}

func (s *Server) handleDeleteComment(sess *Session, msg *ClientMessage) {
	if sess.Anonymous() {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	cur, err := s.db.GetCommentById(sess.ctx, msg.DeleteComment.CommentId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sess.queueMessage(ErrNotFound(msg.Id))
		} else {
			s.log.Println("GetCommentById:", err)
			sess.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if cur.AccountId != sess.user.Id {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	if err := s.db.DeleteComment(sess.ctx, cur.Id); err != nil {
		s.log.Println("DeleteComment:", err)
		sess.queueMessage(ErrInternalError(msg.Id))
		return
	}

	sess.queueMessage(NoErrOK(msg.Id, nil))
	s.broadcaster.Publish(NewCommentDeleted(cur.Id, cur.TaskId))
}

func (s *Server) handleMarkNotificationRead(sess *Session, msg *ClientMessage) {
	if sess.Anonymous() {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	if err := s.notifications.MarkRead(sess.ctx, sess.user.Id, msg.MarkNotificationRead.NotificationId); err != nil {
		s.log.Println("MarkRead:", err)
		sess.queueMessage(ErrInternalError(msg.Id))
		return
	}

	sess.queueMessage(NoErrOK(msg.Id, nil))
}

func (s *Server) handleMarkAllNotificationsRead(sess *Session, msg *ClientMessage) {
	if sess.Anonymous() {
		sess.queueMessage(ErrAuthorizationDenied(msg.Id))
		return
	}

	if err := s.notifications.MarkAllRead(sess.ctx, sess.user.Id); err != nil {
		s.log.Println("MarkAllRead:", err)
		sess.queueMessage(ErrInternalError(msg.Id))
		return
	}

	sess.queueMessage(NoErrOK(msg.Id, nil))
}

func commentToWire(c database.Comment) types.Comment {
	return types.Comment{
		Id:      c.Id,
		TaskId:  c.TaskId,
		Content: c.Content,
		User: types.User{
			Id:       c.AccountId,
			Username: c.Username,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
