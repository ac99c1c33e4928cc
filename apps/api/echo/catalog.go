package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
)

type catalogApi struct {
	svc     *catalog.Service
	userSvc *user.Service
	gate    *enroll.Gate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service, userSvc *user.Service, gate *enroll.Gate) {
	api := catalogApi{svc: svc, userSvc: userSvc, gate: gate}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse, adminMiddleware())
	cg.GET("/:id", api.retrieveCourse)
	cg.PUT("/:id", api.updateCourse, adminMiddleware())
	cg.DELETE("/:id", api.destroyCourse, adminMiddleware())

	instructor := roleMiddleware(user.RoleInstructor)
	cg.GET("/:id/textbooks", api.queryCourseTextbooks)
	cg.POST("/:id/textbooks", api.addCourseTextbook, instructor)
	cg.DELETE("/:id/textbooks/:bookId", api.removeCourseTextbook, instructor)
	cg.GET("/:id/topics", api.queryCourseTopics)
	cg.POST("/:id/topics", api.addCourseTopic, instructor)
	cg.DELETE("/:id/topics/:topicId", api.removeCourseTopic, instructor)

	ug := g.Group("/universities", jwt)
	ug.GET("", api.queryUniversities)
	ug.POST("", api.createUniversity, adminMiddleware())
	ug.DELETE("/:id", api.destroyUniversity, adminMiddleware())

	g.GET("/textbooks", api.queryTextbooks, jwt)

	pg := g.Group("/profile", jwt)
	pg.GET("", api.retrieveProfile)
	pg.PUT("", api.updateProfile)

	g.GET("/students", api.queryStudents, jwt, roleMiddleware(user.RoleAdmin, user.RoleAnalyst))
}

// authorizeCourse lets the acting instructor through only if the course is on
// their roster.
func (api *catalogApi) authorizeCourse(ctx echo.Context, courseID int) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	_, err = api.gate.Authorize(ctx.Request().Context(), usr, courseID)
	return err
}

// Course handlers

func (api *catalogApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	course, err := api.svc.GetCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) updateCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data catalog.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	course, err := api.svc.UpdateCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) destroyCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCourse(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Textbook & topic handlers

func (api *catalogApi) queryCourseTextbooks(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	books, err := api.svc.QueryCourseTextbooks(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if books == nil {
		books = []catalog.Textbook{}
	}
	return ctx.JSON(http.StatusOK, books)
}

func (api *catalogApi) addCourseTextbook(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.authorizeCourse(ctx, id); err != nil {
		return err
	}

	var data catalog.NewTextbook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTextbook")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	book, err := api.svc.AddCourseTextbook(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, book)
}

func (api *catalogApi) removeCourseTextbook(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	bookID, err := intParam(ctx, "bookId")
	if err != nil {
		return err
	}
	if err := api.authorizeCourse(ctx, id); err != nil {
		return err
	}
	if err := api.svc.RemoveCourseTextbook(ctx.Request().Context(), id, bookID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryCourseTopics(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	topics, err := api.svc.QueryCourseTopics(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if topics == nil {
		topics = []catalog.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *catalogApi) addCourseTopic(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.authorizeCourse(ctx, id); err != nil {
		return err
	}

	var data catalog.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	topic, err := api.svc.AddCourseTopic(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, topic)
}

func (api *catalogApi) removeCourseTopic(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	topicID, err := intParam(ctx, "topicId")
	if err != nil {
		return err
	}
	if err := api.authorizeCourse(ctx, id); err != nil {
		return err
	}
	if err := api.svc.RemoveCourseTopic(ctx.Request().Context(), id, topicID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// University handlers

func (api *catalogApi) queryUniversities(ctx echo.Context) error {
	unis, err := api.svc.QueryUniversities(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying universities")
	}
	if unis == nil {
		unis = []catalog.University{}
	}
	return ctx.JSON(http.StatusOK, unis)
}

func (api *catalogApi) createUniversity(ctx echo.Context) error {
	var data catalog.NewUniversity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUniversity")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	uni, err := api.svc.CreateUniversity(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating university")
	}
	return ctx.JSON(http.StatusCreated, uni)
}

func (api *catalogApi) destroyUniversity(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteUniversity(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryTextbooks(ctx echo.Context) error {
	books, err := api.svc.QueryTextbooks(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying textbooks")
	}
	if books == nil {
		books = []catalog.Textbook{}
	}
	return ctx.JSON(http.StatusOK, books)
}

// Profile handlers

func (api *catalogApi) retrieveProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	switch {
	case usr.IsStudent():
		student, err := api.svc.GetStudentByUserID(ctx.Request().Context(), usr.ID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, student)
	case usr.IsInstructor():
		instructor, err := api.svc.GetInstructorByUserID(ctx.Request().Context(), usr.ID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, instructor)
	}
	return errHttpForbidden
}

func (api *catalogApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}

	switch {
	case usr.IsStudent():
		var data catalog.StudentProfile
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to StudentProfile")
		}
		if err := data.Validate(); err != nil {
			return err
		}
		student, err := api.svc.SaveStudentProfile(ctx.Request().Context(), usr.ID, data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, student)
	case usr.IsInstructor():
		var data catalog.InstructorProfile
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to InstructorProfile")
		}
		if err := data.Validate(); err != nil {
			return err
		}
		instructor, err := api.svc.SaveInstructorProfile(ctx.Request().Context(), usr.ID, data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, instructor)
	}
	return errHttpForbidden
}

func (api *catalogApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []catalog.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}
