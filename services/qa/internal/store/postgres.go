package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/wisora/services/qa/internal/domain"
)

// Postgres persists every collection in Postgres.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapErr translates driver errors into domain sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrConflict
	}
	return err
}

func orNewID(id string) string {
	if id == "" {
		return domain.NewID()
	}
	return id
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

// --- questions ---

const questionCols = `id, title, body, images, topic_ids, author_id, group_id, created_at`

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Title, &q.Body, &q.Images, &q.TopicIDs, &q.AuthorID, &q.GroupID, &q.CreatedAt)
	return q, err
}

func (s *Postgres) queryQuestions(ctx context.Context, q string, args ...any) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Question{}
	for rows.Next() {
		qq, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, qq)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	const stmt = `INSERT INTO questions (id, title, body, images, topic_ids, author_id, group_id)
	              VALUES ($1, $2, $3, $4, $5, $6, $7)
	              RETURNING ` + questionCols
	out, err := scanQuestion(s.pool.QueryRow(ctx, stmt,
		orNewID(q.ID), q.Title, q.Body, nonNil(q.Images), nonNil(q.TopicIDs), q.AuthorID, q.GroupID))
	return out, mapErr(err)
}

func (s *Postgres) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	out, err := scanQuestion(s.pool.QueryRow(ctx,
		`SELECT `+questionCols+` FROM questions WHERE id = $1`, id))
	return out, mapErr(err)
}

func (s *Postgres) ListPublicQuestions(ctx context.Context, offset, limit int) ([]domain.Question, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions WHERE group_id IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if offset < 0 || offset >= total {
		return []domain.Question{}, total, nil
	}
	qs, err := s.queryQuestions(ctx,
		`SELECT `+questionCols+` FROM questions
		 WHERE group_id IS NULL
		 ORDER BY created_at DESC, id DESC
		 OFFSET $1 LIMIT $2`, offset, limit)
	return qs, total, err
}

func (s *Postgres) ListQuestionsByAuthor(ctx context.Context, authorID string) ([]domain.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT `+questionCols+` FROM questions
		 WHERE author_id = $1 AND group_id IS NULL
		 ORDER BY created_at DESC, id DESC`, authorID)
}

func (s *Postgres) ListQuestionsByGroup(ctx context.Context, groupID string) ([]domain.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT `+questionCols+` FROM questions
		 WHERE group_id = $1
		 ORDER BY created_at DESC, id DESC`, groupID)
}

func (s *Postgres) SearchQuestions(ctx context.Context, text, topicID string, limit int) ([]domain.Question, error) {
	var (
		where = []string{"group_id IS NULL"}
		args  []any
	)
	if t := strings.TrimSpace(text); t != "" {
		args = append(args, t)
		where = append(where, "search @@ plainto_tsquery('english', $1)")
	}
	if topicID != "" {
		args = append(args, topicID)
		where = append(where, "$"+strconv.Itoa(len(args))+" = ANY(topic_ids)")
	}
	args = append(args, limit)
	q := `SELECT ` + questionCols + ` FROM questions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))
	return s.queryQuestions(ctx, q, args...)
}

func (s *Postgres) CountQuestionsByAuthor(ctx context.Context, authorID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions WHERE author_id = $1`, authorID).Scan(&n)
	return n, err
}

func (s *Postgres) DeleteQuestion(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// --- answers ---

const answerCols = `id, text, question_id, author_id, created_at, updated_at`

func scanAnswer(row pgx.Row) (domain.Answer, error) {
	var a domain.Answer
	err := row.Scan(&a.ID, &a.Text, &a.QuestionID, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Postgres) queryAnswers(ctx context.Context, q string, args ...any) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error) {
	out, err := scanAnswer(s.pool.QueryRow(ctx,
		`INSERT INTO answers (id, text, question_id, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+answerCols, orNewID(a.ID), a.Text, a.QuestionID, a.AuthorID))
	return out, mapErr(err)
}

func (s *Postgres) GetAnswer(ctx context.Context, id string) (domain.Answer, error) {
	out, err := scanAnswer(s.pool.QueryRow(ctx, `SELECT `+answerCols+` FROM answers WHERE id = $1`, id))
	return out, mapErr(err)
}

func (s *Postgres) ListAnswersByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error) {
	return s.queryAnswers(ctx,
		`SELECT `+answerCols+` FROM answers WHERE question_id = $1 ORDER BY created_at DESC, id DESC`, questionID)
}

func (s *Postgres) ListAnswersByAuthor(ctx context.Context, authorID string) ([]domain.Answer, error) {
	return s.queryAnswers(ctx,
		`SELECT `+answerCols+` FROM answers WHERE author_id = $1 ORDER BY created_at DESC, id DESC`, authorID)
}

func (s *Postgres) AnswerIDsByQuestion(ctx context.Context, questionID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM answers WHERE question_id = $1 ORDER BY id`, questionID)
}

func (s *Postgres) CountAnswersByQuestion(ctx context.Context, questionIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT question_id, count(*) FROM answers WHERE question_id = ANY($1) GROUP BY question_id`, questionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (s *Postgres) CountAnswersByAuthor(ctx context.Context, authorID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM answers WHERE author_id = $1`, authorID).Scan(&n)
	return n, err
}

func (s *Postgres) UpdateAnswerText(ctx context.Context, id, text string) (domain.Answer, error) {
	out, err := scanAnswer(s.pool.QueryRow(ctx,
		`UPDATE answers SET text = $2, updated_at = now() WHERE id = $1 RETURNING `+answerCols, id, text))
	return out, mapErr(err)
}

func (s *Postgres) DeleteAnswers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM answers WHERE id = ANY($1)`, ids)
	return err
}

func (s *Postgres) queryIDs(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// --- comments ---

const commentCols = `id, text, parent_id, parent_type, author_id, created_at, updated_at`

func scanComment(row pgx.Row) (domain.Comment, error) {
	var c domain.Comment
	var pt string
	err := row.Scan(&c.ID, &c.Text, &c.ParentID, &pt, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt)
	c.ParentType = domain.ParentType(pt)
	return c, err
}

func (s *Postgres) queryComments(ctx context.Context, q string, args ...any) ([]domain.Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	out, err := scanComment(s.pool.QueryRow(ctx,
		`INSERT INTO comments (id, text, parent_id, parent_type, author_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+commentCols, orNewID(c.ID), c.Text, c.ParentID, string(c.ParentType), c.AuthorID))
	return out, mapErr(err)
}

func (s *Postgres) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	out, err := scanComment(s.pool.QueryRow(ctx, `SELECT `+commentCols+` FROM comments WHERE id = $1`, id))
	return out, mapErr(err)
}

func (s *Postgres) ListByParent(ctx context.Context, parentID string) ([]domain.Comment, error) {
	return s.queryComments(ctx,
		`SELECT `+commentCols+` FROM comments WHERE parent_id = $1 ORDER BY created_at ASC, id ASC`, parentID)
}

func (s *Postgres) ListChildren(ctx context.Context, parentType domain.ParentType, parentIDs []string) ([]domain.Comment, error) {
	if len(parentIDs) == 0 {
		return []domain.Comment{}, nil
	}
	return s.queryComments(ctx,
		`SELECT `+commentCols+` FROM comments
		 WHERE parent_id = ANY($1) AND parent_type = $2
		 ORDER BY created_at ASC, id ASC`, parentIDs, string(parentType))
}

func (s *Postgres) UpdateCommentText(ctx context.Context, id, text string) (domain.Comment, error) {
	out, err := scanComment(s.pool.QueryRow(ctx,
		`UPDATE comments SET text = $2, updated_at = now() WHERE id = $1 RETURNING `+commentCols, id, text))
	return out, mapErr(err)
}

func (s *Postgres) DeleteComments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = ANY($1)`, ids)
	return err
}

// --- reactions ---

func (s *Postgres) InsertReaction(ctx context.Context, r domain.Reaction) (domain.Reaction, error) {
	out := r
	var tt string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reactions (id, user_id, target_id, target_type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, target_id, target_type, created_at`,
		orNewID(r.ID), r.UserID, r.TargetID, string(r.TargetType)).
		Scan(&out.ID, &out.UserID, &out.TargetID, &tt, &out.CreatedAt)
	out.TargetType = domain.TargetType(tt)
	return out, mapErr(err)
}

func (s *Postgres) DeleteReaction(ctx context.Context, userID, targetID string, tt domain.TargetType) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reactions WHERE user_id = $1 AND target_id = $2 AND target_type = $3`,
		userID, targetID, string(tt))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) HasReaction(ctx context.Context, userID, targetID string, tt domain.TargetType) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reactions WHERE user_id = $1 AND target_id = $2 AND target_type = $3)`,
		userID, targetID, string(tt)).Scan(&ok)
	return ok, err
}

func (s *Postgres) CountReactions(ctx context.Context, targetID string, tt domain.TargetType) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM reactions WHERE target_id = $1 AND target_type = $2`,
		targetID, string(tt)).Scan(&n)
	return n, err
}

func (s *Postgres) DeleteReactionsForTargets(ctx context.Context, tt domain.TargetType, targetIDs []string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM reactions WHERE target_type = $1 AND target_id = ANY($2)`, string(tt), targetIDs)
	return err
}

// --- notifications ---

const notificationCols = `id, recipient_id, sender_id, type, question_id, read, created_at`

func scanNotification(row pgx.Row) (domain.Notification, error) {
	var n domain.Notification
	var typ string
	err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &typ, &n.QuestionID, &n.Read, &n.CreatedAt)
	n.Type = domain.NotificationType(typ)
	return n, err
}

func (s *Postgres) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	out, err := scanNotification(s.pool.QueryRow(ctx,
		`INSERT INTO notifications (id, recipient_id, sender_id, type, question_id, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+notificationCols,
		orNewID(n.ID), n.RecipientID, n.SenderID, string(n.Type), n.QuestionID, n.Read, createdAt))
	return out, mapErr(err)
}

func (s *Postgres) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	out, err := scanNotification(s.pool.QueryRow(ctx,
		`SELECT `+notificationCols+` FROM notifications WHERE id = $1`, id))
	return out, mapErr(err)
}

func (s *Postgres) ListNotifications(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+notificationCols+` FROM notifications
		 WHERE recipient_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Postgres) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE recipient_id = $1 AND NOT read`, recipientID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Postgres) DeleteNotificationsByQuestion(ctx context.Context, questionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE question_id = $1`, questionID)
	return err
}

// --- groups ---

const groupCols = `g.id, g.name, g.description, g.profile_picture, g.cover_image, g.is_private, g.owner_id, g.created_at,
	COALESCE((SELECT array_agg(m.user_id ORDER BY m.joined_at, m.user_id) FROM group_members m WHERE m.group_id = g.id), '{}')`

func scanGroup(row pgx.Row) (domain.Group, error) {
	var g domain.Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.ProfilePicture, &g.CoverImage,
		&g.IsPrivate, &g.OwnerID, &g.CreatedAt, &g.Members)
	return g, err
}

func (s *Postgres) queryGroups(ctx context.Context, q string, args ...any) ([]domain.Group, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateGroup(ctx context.Context, g domain.Group) (domain.Group, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Group{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := orNewID(g.ID)
	if _, err := tx.Exec(ctx,
		`INSERT INTO groups (id, name, description, profile_picture, cover_image, is_private, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, g.Name, g.Description, g.ProfilePicture, g.CoverImage, g.IsPrivate, g.OwnerID); err != nil {
		return domain.Group{}, mapErr(err)
	}
	members := append([]string{g.OwnerID}, g.Members...)
	for _, m := range members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, m); err != nil {
			return domain.Group{}, err
		}
	}
	out, err := scanGroup(tx.QueryRow(ctx, `SELECT `+groupCols+` FROM groups g WHERE g.id = $1`, id))
	if err != nil {
		return domain.Group{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *Postgres) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	out, err := scanGroup(s.pool.QueryRow(ctx, `SELECT `+groupCols+` FROM groups g WHERE g.id = $1`, id))
	return out, mapErr(err)
}

func (s *Postgres) ListGroupsForMember(ctx context.Context, userID string) ([]domain.Group, error) {
	return s.queryGroups(ctx,
		`SELECT `+groupCols+` FROM groups g
		 WHERE EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1)
		 ORDER BY g.created_at DESC, g.id DESC`, userID)
}

func (s *Postgres) ListPublicGroupsExcluding(ctx context.Context, userID string, limit int) ([]domain.Group, error) {
	return s.queryGroups(ctx,
		`SELECT `+groupCols+` FROM groups g
		 WHERE NOT g.is_private
		   AND NOT EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1)
		 ORDER BY g.created_at DESC, g.id DESC
		 LIMIT $2`, userID, limit)
}

func (s *Postgres) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, groupID, userID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrNotFound
	}
	return mapErr(err)
}

func (s *Postgres) RemoveMember(ctx context.Context, groupID, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- users ---

func (s *Postgres) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	var out domain.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, bio) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, bio = EXCLUDED.bio
		 RETURNING id, username, bio, created_at`, u.ID, u.Username, u.Bio).
		Scan(&out.ID, &out.Username, &out.Bio, &out.CreatedAt)
	return out, mapErr(err)
}

func (s *Postgres) GetUser(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	err := s.pool.QueryRow(ctx, `SELECT id, username, bio, created_at FROM users WHERE id = $1`, id).
		Scan(&out.ID, &out.Username, &out.Bio, &out.CreatedAt)
	return out, mapErr(err)
}

func (s *Postgres) Follow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)`, followerID, followeeID)
	return mapErr(err)
}

func (s *Postgres) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID).Scan(&ok)
	return ok, err
}

func (s *Postgres) Followers(ctx context.Context, userID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY follower_id`, userID)
}

func (s *Postgres) Following(ctx context.Context, userID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY followee_id`, userID)
}

// --- topics ---

func (s *Postgres) CreateTopic(ctx context.Context, name string) (domain.Topic, error) {
	var t domain.Topic
	err := s.pool.QueryRow(ctx,
		`INSERT INTO topics (id, name) VALUES ($1, $2) RETURNING id, name, created_at`,
		domain.NewID(), strings.TrimSpace(name)).Scan(&t.ID, &t.Name, &t.CreatedAt)
	return t, mapErr(err)
}

func (s *Postgres) FindTopicByName(ctx context.Context, name string) (domain.Topic, error) {
	var t domain.Topic
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM topics WHERE lower(name) = lower($1)`, strings.TrimSpace(name)).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	return t, mapErr(err)
}

func (s *Postgres) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM topics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Topic{}
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
