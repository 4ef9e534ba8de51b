package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"taskerhub/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// NewBSONRegistry stores uuid.UUID as its canonical string and
// decimal.Decimal as Decimal128.
func NewBSONRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(uuidType, bsoncodec.ValueEncoderFunc(encodeUUID))
	reg.RegisterTypeDecoder(uuidType, bsoncodec.ValueDecoderFunc(decodeUUID))
	reg.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeUUID(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != uuidType {
		return bsoncodec.ValueEncoderError{Name: "UUIDEncodeValue", Types: []reflect.Type{uuidType}, Received: val}
	}
	return vw.WriteString(val.Interface().(uuid.UUID).String())
}

func decodeUUID(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != uuidType {
		return bsoncodec.ValueDecoderError{Name: "UUIDDecodeValue", Types: []reflect.Type{uuidType}, Received: val}
	}

	switch vr.Type() {
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		id, err := uuid.FromString(s)
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(id))
		return nil
	case bsontype.Null:
		val.Set(reflect.Zero(uuidType))
		return vr.ReadNull()
	default:
		return fmt.Errorf("cannot decode %v into uuid.UUID", vr.Type())
	}
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{Name: "DecimalEncodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}
	d128, err := primitive.ParseDecimal128(val.Interface().(decimal.Decimal).String())
	if err != nil {
		return err
	}
	return vw.WriteDecimal128(d128)
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "DecimalDecodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}

	var (
		d   decimal.Decimal
		err error
	)
	switch vr.Type() {
	case bsontype.Decimal128:
		var d128 primitive.Decimal128
		if d128, err = vr.ReadDecimal128(); err == nil {
			d, err = decimal.NewFromString(d128.String())
		}
	case bsontype.Double:
		var f float64
		if f, err = vr.ReadDouble(); err == nil {
			d = decimal.NewFromFloat(f)
		}
	case bsontype.Int32:
		var i int32
		if i, err = vr.ReadInt32(); err == nil {
			d = decimal.NewFromInt32(i)
		}
	case bsontype.Int64:
		var i int64
		if i, err = vr.ReadInt64(); err == nil {
			d = decimal.NewFromInt(i)
		}
	case bsontype.String:
		var s string
		if s, err = vr.ReadString(); err == nil {
			d, err = decimal.NewFromString(s)
		}
	case bsontype.Null:
		err = vr.ReadNull()
	default:
		err = fmt.Errorf("cannot decode %v into decimal.Decimal", vr.Type())
	}
	if err != nil {
		return err
	}
	val.Set(reflect.ValueOf(d))
	return nil
}

type mongoRepository[T any] struct {
	coll *mongo.Collection
	idOf func(*T) uuid.UUID
}

func (r *mongoRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var doc T
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return &doc, nil
}

func (r *mongoRepository[T]) Find(ctx context.Context, q Query) ([]T, error) {
	filter, err := mongoFilter(q.Conditions)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, s := range q.Sort {
			if err := checkField(s.Field); err != nil {
				return nil, err
			}
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: mongoField(s.Field), Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err)
	}
	return docs, nil
}

func (r *mongoRepository[T]) Count(ctx context.Context, q Query) (int64, error) {
	filter, err := mongoFilter(q.Conditions)
	if err != nil {
		return 0, err
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	return n, translateMongoError(err)
}

func (r *mongoRepository[T]) Create(ctx context.Context, doc *T) error {
	_, err := r.coll.InsertOne(ctx, doc)
	return translateMongoError(err)
}

func (r *mongoRepository[T]) Update(ctx context.Context, doc *T) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": r.idOf(doc)}, doc)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository[T]) DeleteWhere(ctx context.Context, q Query) (int64, error) {
	if len(q.Conditions) == 0 {
		return 0, ErrEmptyFilter
	}
	filter, err := mongoFilter(q.Conditions)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, translateMongoError(err)
	}
	return res.DeletedCount, nil
}

func mongoField(name string) string {
	if name == "id" {
		return "_id"
	}
	return name
}

func mongoFilter(conds []Condition) (bson.M, error) {
	filter := bson.M{}
	for _, c := range conds {
		if err := checkField(c.Field); err != nil {
			return nil, err
		}

		field := mongoField(c.Field)
		ops, ok := filter[field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[field] = ops
		}

		switch c.Op {
		case OpIn:
			ops["$in"] = toSlice(c.Value)
		case OpEq, OpGt, OpGte, OpLt, OpLte:
			ops["$"+string(c.Op)] = c.Value
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
	}
	return filter, nil
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// MongoStore is the document Store backend. It has no multi-document
// transactions: WithTransaction runs its function directly.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongoRepository[models.User]
	profiles *mongoRepository[models.Profile]
	tasks    *mongoRepository[models.Task]
	payments *mongoRepository[models.Payment]
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database, options.Database().SetRegistry(NewBSONRegistry()))
	return &MongoStore{
		client: client,
		db:     db,
		users: &mongoRepository[models.User]{
			coll: db.Collection("users"),
			idOf: func(u *models.User) uuid.UUID { return u.ID },
		},
		profiles: &mongoRepository[models.Profile]{
			coll: db.Collection("profiles"),
			idOf: func(p *models.Profile) uuid.UUID { return p.ID },
		},
		tasks: &mongoRepository[models.Task]{
			coll: db.Collection("tasks"),
			idOf: func(t *models.Task) uuid.UUID { return t.ID },
		},
		payments: &mongoRepository[models.Payment]{
			coll: db.Collection("payments"),
			idOf: func(p *models.Payment) uuid.UUID { return p.ID },
		},
	}
}

func (s *MongoStore) Users() Repository[models.User]       { return s.users }
func (s *MongoStore) Profiles() Repository[models.Profile] { return s.profiles }
func (s *MongoStore) Tasks() Repository[models.Task]       { return s.tasks }
func (s *MongoStore) Payments() Repository[models.Payment] { return s.payments }

func (s *MongoStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

// EnsureIndexes creates the unique and geospatial indexes the services rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"profiles": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}}},
		},
		"tasks": {
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		"payments": {
			{Keys: bson.D{{Key: "reference_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "task_id", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
