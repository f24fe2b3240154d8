package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"field-console-api/internal/fields"
	"field-console-api/internal/ownertype"
	"field-console-api/internal/personal"
	"field-console-api/internal/template"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:resolve_test_%d?mode=memory&cache=shared", id)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&ownertype.OwnerType{}, &template.TemplateField{}, &personal.PersonalField{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedOwnerType(t *testing.T, db *gorm.DB) ownertype.OwnerType {
	t.Helper()

	ot := ownertype.OwnerType{Name: fmt.Sprintf("Type %d", time.Now().UnixNano()), IsActive: true}
	if err := db.Create(&ot).Error; err != nil {
		t.Fatalf("seed owner type: %v", err)
	}
	return ot
}

func seedTemplate(t *testing.T, db *gorm.DB, ownerTypeID uint, name string, order int, inheritable, active bool) template.TemplateField {
	t.Helper()

	tf := template.TemplateField{
		OwnerTypeID:   ownerTypeID,
		Name:          name,
		Label:         name,
		FieldType:     "text",
		IsInheritable: inheritable,
		SortOrder:     order,
		IsActive:      active,
	}
	if err := db.Create(&tf).Error; err != nil {
		t.Fatalf("seed template %s: %v", name, err)
	}
	return tf
}

func seedPersonal(t *testing.T, db *gorm.DB, ownerUserID uint, parentID *uint, name string, order int, active bool) personal.PersonalField {
	t.Helper()

	pf := personal.PersonalField{
		OwnerUserID:   ownerUserID,
		ParentFieldID: parentID,
		Name:          name,
		Label:         name + " (mine)",
		FieldType:     "text",
		SortOrder:     order,
		IsActive:      active,
	}
	if err := db.Create(&pf).Error; err != nil {
		t.Fatalf("seed personal %s: %v", name, err)
	}
	return pf
}

func TestEffectiveFields_UnknownOwnerType(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}

	_, err := svc.EffectiveFields(context.Background(), 99, 7)
	if !errors.Is(err, fields.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEffectiveFields_OverrideReplacesInherited(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}
	ot := seedOwnerType(t, db)

	seedTemplate(t, db, ot.ID, "email", 1, true, true)
	phone := seedTemplate(t, db, ot.ID, "phone", 2, true, true)
	seedPersonal(t, db, 7, &phone.ID, "phone", 2, true)

	effective, err := svc.EffectiveFields(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(effective) != 2 {
		t.Fatalf("len = %d, want 2", len(effective))
	}
	if effective[0].Name != "email" || effective[0].Origin != fields.OriginInherited {
		t.Fatalf("first = %+v", effective[0])
	}
	if effective[1].Name != "phone" || effective[1].Origin != fields.OriginOverride {
		t.Fatalf("second = %+v", effective[1])
	}
	if effective[1].Label != "phone (mine)" {
		t.Fatalf("override label = %q, want the personal one", effective[1].Label)
	}
	if effective[1].ParentFieldID == nil || *effective[1].ParentFieldID != phone.ID {
		t.Fatalf("parent ref = %v", effective[1].ParentFieldID)
	}
}

func TestEffectiveFields_PersonalOnlyAppended(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}
	ot := seedOwnerType(t, db)

	seedTemplate(t, db, ot.ID, "email", 1, true, true)
	seedPersonal(t, db, 7, nil, "nickname", 5, true)

	effective, err := svc.EffectiveFields(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(effective) != 2 {
		t.Fatalf("len = %d, want 2", len(effective))
	}
	if effective[1].Name != "nickname" || effective[1].Origin != fields.OriginPersonal {
		t.Fatalf("appended = %+v", effective[1])
	}
}

func TestEffectiveFields_FiltersInactiveAndNonInheritable(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}
	ot := seedOwnerType(t, db)

	seedTemplate(t, db, ot.ID, "visible", 1, true, true)
	seedTemplate(t, db, ot.ID, "internal_code", 2, false, true)
	seedTemplate(t, db, ot.ID, "retired", 3, true, false)
	seedPersonal(t, db, 7, nil, "disabled_note", 4, false)

	effective, err := svc.EffectiveFields(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(effective) != 1 || effective[0].Name != "visible" {
		t.Fatalf("effective = %+v", effective)
	}
}

func TestEffectiveFields_ScopedToUser(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}
	ot := seedOwnerType(t, db)

	seedTemplate(t, db, ot.ID, "email", 1, true, true)
	seedPersonal(t, db, 8, nil, "other_users_field", 2, true)

	effective, err := svc.EffectiveFields(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(effective) != 1 {
		t.Fatalf("leaked another user's fields: %+v", effective)
	}
}

func TestEffectiveFields_EmptyUserGetsTemplateOnly(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}
	ot := seedOwnerType(t, db)

	seedTemplate(t, db, ot.ID, "email", 1, true, true)

	effective, err := svc.EffectiveFields(context.Background(), ot.ID, 424242)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(effective) != 1 || effective[0].Origin != fields.OriginInherited {
		t.Fatalf("effective = %+v", effective)
	}
}

func TestLastModified_TracksBothScopes(t *testing.T) {
	db := newTestDB(t)
	svc := &ResolveService{DB: db}
	ot := seedOwnerType(t, db)

	none, err := svc.LastModified(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("last modified: %v", err)
	}
	if !none.IsZero() {
		t.Fatalf("empty scopes should be zero, got %v", none)
	}

	seedTemplate(t, db, ot.ID, "email", 1, true, true)
	afterTemplate, err := svc.LastModified(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("last modified: %v", err)
	}
	if afterTemplate.IsZero() {
		t.Fatal("template write not reflected")
	}

	seedPersonal(t, db, 7, nil, "nickname", 2, true)
	afterPersonal, err := svc.LastModified(context.Background(), ot.ID, 7)
	if err != nil {
		t.Fatalf("last modified: %v", err)
	}
	if afterPersonal.Before(afterTemplate) {
		t.Fatalf("personal write not reflected: %v < %v", afterPersonal, afterTemplate)
	}
}
