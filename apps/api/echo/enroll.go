package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core"
	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
)

type enrollApi struct {
	svc        *enroll.Service
	catalogSvc *catalog.Service
	userSvc    *user.Service
}

func registerEnrollAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enroll.Service, catalogSvc *catalog.Service, userSvc *user.Service) {
	api := enrollApi{svc: svc, catalogSvc: catalogSvc, userSvc: userSvc}

	eg := g.Group("/enrollments", jwt)

	student := roleMiddleware(user.RoleStudent)
	instructor := roleMiddleware(user.RoleInstructor)

	eg.POST("", api.request, student)
	eg.DELETE("", api.cancel, student)
	eg.GET("", api.queryForCourse, instructor)
	eg.PUT("/decision", api.decide, instructor)
	eg.PUT("/evaluation", api.evaluate, instructor)

	g.GET("/students/:id/courses", api.queryStudentCourses, jwt)

	ig := g.Group("/instructor-courses", jwt, adminMiddleware())
	ig.GET("", api.queryAssignments)
	ig.POST("", api.assignCourse)
	ig.DELETE("", api.unassignCourse)
}

// contextStudent resolves the acting user's student profile; enrollment
// requests and cancellations always act on the caller's own record.
func (api *enrollApi) contextStudent(ctx echo.Context) (catalog.Student, error) {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return catalog.Student{}, err
	}
	return api.catalogSvc.GetStudentByUserID(ctx.Request().Context(), usr.ID)
}

// Handlers

func (api *enrollApi) request(ctx echo.Context) error {
	student, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}

	enr, err := api.svc.Request(ctx.Request().Context(), enroll.NewEnrollment{
		CourseID:  data.CourseID,
		StudentID: student.ID,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollApi) cancel(ctx echo.Context) error {
	student, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}
	courseID, err := intQueryParam(ctx, "courseId")
	if err != nil {
		return err
	}

	if err := api.svc.Cancel(ctx.Request().Context(), courseID, student.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollApi) queryForCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	courseID, err := intQueryParam(ctx, "courseId")
	if err != nil {
		return err
	}

	enrs, err := api.svc.ListForCourse(ctx.Request().Context(), usr, courseID)
	if err != nil {
		return err
	}
	if enrs == nil {
		enrs = []enroll.CourseEnrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollApi) decide(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	var data enroll.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}

	if err := api.svc.Decide(ctx.Request().Context(), usr, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Decision recorded."})
}

func (api *enrollApi) evaluate(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	var data enroll.Evaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Evaluation")
	}

	if err := api.svc.SetEvaluation(ctx.Request().Context(), usr, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Evaluation recorded."})
}

func (api *enrollApi) queryStudentCourses(ctx echo.Context) error {
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	// students may only view their own course list
	if usr.IsStudent() {
		student, err := api.catalogSvc.GetStudentByUserID(ctx.Request().Context(), usr.ID)
		if err != nil {
			return err
		}
		if student.ID != studentID {
			return errHttpForbidden
		}
	}

	approvedOnly := ctx.QueryParam("approved") == "true"
	courses, err := api.svc.StudentCourses(ctx.Request().Context(), studentID, approvedOnly)
	if err != nil {
		return err
	}
	if courses == nil {
		courses = []enroll.CourseRef{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

// ACL handlers

func (api *enrollApi) queryAssignments(ctx echo.Context) error {
	asgs, err := api.svc.QueryAssignments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []enroll.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *enrollApi) assignCourse(ctx echo.Context) error {
	var data AssignmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignmentRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.AssignCourse(ctx.Request().Context(), data.InstructorID, data.CourseID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "Course assigned."})
}

func (api *enrollApi) unassignCourse(ctx echo.Context) error {
	instructorID, err := intQueryParam(ctx, "instructorId")
	if err != nil {
		return err
	}
	courseID, err := intQueryParam(ctx, "courseId")
	if err != nil {
		return err
	}

	if err := api.svc.UnassignCourse(ctx.Request().Context(), instructorID, courseID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	EnrollmentRequest struct {
		CourseID int `json:"course_id" validate:"required,min=1"`
	}

	AssignmentRequest struct {
		InstructorID int `json:"instructor_id" validate:"required,min=1"`
		CourseID     int `json:"course_id" validate:"required,min=1"`
	}
)

func (ar *AssignmentRequest) Validate() error { return core.Validate.Struct(ar) }
